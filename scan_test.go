package wikidocu_test

import (
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want wikidocu.Unit
	}{
		{"docs", wikidocu.Unit{Kind: wikidocu.UnitFile, Origin: "docs"}},
		{" ./a.md ", wikidocu.Unit{Kind: wikidocu.UnitFile, Origin: "./a.md"}},
		{"https://example.com/a", wikidocu.Unit{Kind: wikidocu.UnitURL, Origin: "https://example.com/a"}},
		{"http://example.com", wikidocu.Unit{Kind: wikidocu.UnitURL, Origin: "http://example.com"}},
		{"sitemap:https://example.com", wikidocu.Unit{Kind: wikidocu.UnitSitemap, Origin: "https://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, wikidocu.ParseUnit(tt.raw))
		})
	}
}

func TestMergeUnitResults(t *testing.T) {
	t.Parallel()

	unit := func(pos int, contents ...string) wikidocu.UnitResult {
		r := wikidocu.UnitResult{Position: pos}
		for _, c := range contents {
			r.Sources = append(r.Sources, wikidocu.SourceRecord{Origin: "u", StartLine: 1, EndLine: 1, RelevantContent: c})
		}
		return r
	}

	t.Run("concatenates sources in unit order", func(t *testing.T) {
		t.Parallel()

		got := wikidocu.MergeUnitResults("q", []wikidocu.UnitResult{
			unit(0, "a", "b"),
			unit(1),
			unit(2, "c"),
		}, nil)

		require.Len(t, got.Sources, 3)
		assert.Equal(t, "a", got.Sources[0].RelevantContent)
		assert.Equal(t, "c", got.Sources[2].RelevantContent)
		require.Len(t, got.Citations, 3)
		assert.Equal(t, 3, got.Citations[2].Index)
		assert.Equal(t, "q", got.SearchQuery)
		assert.Contains(t, got.Evidence, "<!-- citation 3 -->")
	})

	t.Run("merging is associative", func(t *testing.T) {
		t.Parallel()

		a, b, c := unit(0, "a"), unit(1, "b"), unit(2, "c")

		left := wikidocu.MergeUnitResults("q", append(wikidocu.MergeUnitResults("q", []wikidocu.UnitResult{a, b}, nil).Units, c), nil)
		right := wikidocu.MergeUnitResults("q", append([]wikidocu.UnitResult{a}, wikidocu.MergeUnitResults("q", []wikidocu.UnitResult{b, c}, nil).Units...), nil)

		assert.Equal(t, left.Evidence, right.Evidence)
		assert.Equal(t, left.Sources, right.Sources)
	})

	t.Run("empty merge has no evidence", func(t *testing.T) {
		t.Parallel()

		failures := []wikidocu.UnitFailure{{Unit: wikidocu.Unit{Kind: wikidocu.UnitURL, Origin: "https://x"}}}

		got := wikidocu.MergeUnitResults("q", nil, failures)

		assert.Empty(t, got.Sources)
		assert.Empty(t, got.Evidence)
		assert.Len(t, got.Failures, 1)
	})
}
