package wikidocu

import (
	"fmt"
	"strings"
)

// Citation is a display-ready, sequentially numbered SourceRecord.
type Citation struct {
	Index int `json:"index"`
	SourceRecord
}

// AssembleCitations numbers records 1..N in the order given, skipping records
// whose RelevantContent is empty or whitespace.
func AssembleCitations(records []SourceRecord) []Citation {
	citations := make([]Citation, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.RelevantContent) == "" {
			continue
		}
		citations = append(citations, Citation{
			Index:        len(citations) + 1,
			SourceRecord: r,
		})
	}
	return citations
}

// RenderCitation formats a single citation as a self-contained markdown block.
func RenderCitation(c Citation) string {
	fence := codeFence(c.RelevantContent)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<!-- citation %d -->\n", c.Index)
	fmt.Fprintf(&sb, "> **Source [%d]:** %s, lines %d to %d\n", c.Index, codeSpan(c.Origin), c.StartLine, c.EndLine)
	sb.WriteString(">\n")
	fmt.Fprintf(&sb, "> **Reason:** %s\n\n", commentSafe.Replace(oneLine(c.Reasoning)))
	sb.WriteString(fence + "text\n")
	sb.WriteString(c.RelevantContent)
	sb.WriteString("\n" + fence + "\n")
	fmt.Fprintf(&sb, "<!-- /citation %d -->", c.Index)
	return sb.String()
}

// RenderCitations formats citations for display or model context.
// Blocks are separated by blank lines.
func RenderCitations(citations []Citation) string {
	if len(citations) == 0 {
		return ""
	}

	parts := make([]string, 0, len(citations))
	for _, c := range citations {
		parts = append(parts, RenderCitation(c))
	}
	return strings.Join(parts, "\n\n")
}

// commentSafe keeps model-written text from opening or closing the HTML
// comments that delimit citation blocks.
var commentSafe = strings.NewReplacer("<!--", "&lt;!--", "-->", "--&gt;")

// codeFence returns a backtick fence longer than any backtick run in s.
func codeFence(s string) string {
	return strings.Repeat("`", max(3, longestBacktickRun(s)+1))
}

// codeSpan wraps s in an inline code span whose delimiter is longer than any
// backtick run inside it.
func codeSpan(s string) string {
	delim := strings.Repeat("`", longestBacktickRun(s)+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return delim + s + delim
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return longest
}

// oneLine collapses line breaks so the text stays inside a blockquote line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
