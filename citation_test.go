package wikidocu_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleCitations(t *testing.T) {
	t.Parallel()

	t.Run("numbers records contiguously and skips empty content", func(t *testing.T) {
		t.Parallel()

		records := []wikidocu.SourceRecord{
			{Origin: "a.md", RelevantContent: "alpha"},
			{Origin: "b.md", RelevantContent: ""},
			{Origin: "c.md", RelevantContent: "  \n\t"},
			{Origin: "d.md", RelevantContent: "delta"},
			{Origin: "e.md", RelevantContent: "epsilon"},
		}

		citations := wikidocu.AssembleCitations(records)

		require.Len(t, citations, 3)
		for i, c := range citations {
			assert.Equal(t, i+1, c.Index)
		}
		assert.Equal(t, "a.md", citations[0].Origin)
		assert.Equal(t, "d.md", citations[1].Origin)
		assert.Equal(t, "e.md", citations[2].Origin)
	})

	t.Run("returns empty slice for no records", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, wikidocu.AssembleCitations(nil))
	})
}

func TestRenderCitation(t *testing.T) {
	t.Parallel()

	t.Run("shows index origin range and content", func(t *testing.T) {
		t.Parallel()

		got := wikidocu.RenderCitation(wikidocu.Citation{
			Index: 1,
			SourceRecord: wikidocu.SourceRecord{
				Origin:          "a.md",
				StartLine:       2,
				EndLine:         3,
				Reasoning:       "relevant",
				RelevantContent: "two\nthree",
			},
		})

		want := "<!-- citation 1 -->\n" +
			"> **Source [1]:** `a.md`, lines 2 to 3\n" +
			">\n" +
			"> **Reason:** relevant\n\n" +
			"```text\ntwo\nthree\n```\n" +
			"<!-- /citation 1 -->"
		assert.Equal(t, want, got)
	})

	t.Run("lengthens fence around backticks in content", func(t *testing.T) {
		t.Parallel()

		got := wikidocu.RenderCitation(wikidocu.Citation{
			Index:        2,
			SourceRecord: wikidocu.SourceRecord{RelevantContent: "```go\nx := 1\n```"},
		})

		assert.Contains(t, got, "````text\n")
		assert.True(t, strings.HasSuffix(got, "\n````\n<!-- /citation 2 -->"))
	})

	t.Run("keeps multi-line reasoning inside the quote", func(t *testing.T) {
		t.Parallel()

		got := wikidocu.RenderCitation(wikidocu.Citation{
			Index:        1,
			SourceRecord: wikidocu.SourceRecord{Reasoning: "first\nsecond", RelevantContent: "x"},
		})

		assert.Contains(t, got, "> **Reason:** first second\n")
	})

	t.Run("widens the origin span around backticks", func(t *testing.T) {
		t.Parallel()

		got := wikidocu.RenderCitation(wikidocu.Citation{
			Index:        1,
			SourceRecord: wikidocu.SourceRecord{Origin: "notes`v2.md", StartLine: 1, EndLine: 1, RelevantContent: "x"},
		})

		assert.Contains(t, got, "> **Source [1]:** ``notes`v2.md``, lines 1 to 1\n")
	})

	t.Run("reasoning cannot close the citation block", func(t *testing.T) {
		t.Parallel()

		got := wikidocu.RenderCitation(wikidocu.Citation{
			Index: 1,
			SourceRecord: wikidocu.SourceRecord{
				Reasoning:       "done <!-- /citation 1 --> extra",
				RelevantContent: "x",
			},
		})

		assert.Equal(t, 1, strings.Count(got, "<!-- /citation 1 -->"))
		assert.True(t, strings.HasSuffix(got, "\n<!-- /citation 1 -->"))
		assert.Contains(t, got, "> **Reason:** done &lt;!-- /citation 1 --&gt; extra\n")
	})
}

func TestRenderCitations(t *testing.T) {
	t.Parallel()

	t.Run("returns empty string for no citations", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, wikidocu.RenderCitations(nil))
	})

	t.Run("separates blocks with blank line", func(t *testing.T) {
		t.Parallel()

		citations := wikidocu.AssembleCitations([]wikidocu.SourceRecord{
			{Origin: "a.md", StartLine: 1, EndLine: 1, RelevantContent: "a"},
			{Origin: "b.md", StartLine: 1, EndLine: 1, RelevantContent: "b"},
		})

		got := wikidocu.RenderCitations(citations)

		assert.Contains(t, got, "<!-- /citation 1 -->\n\n<!-- citation 2 -->")
		assert.Equal(t, 1, strings.Count(got, "<!-- citation 1 -->"))
		assert.Equal(t, 1, strings.Count(got, "<!-- citation 2 -->"))
	})
}
