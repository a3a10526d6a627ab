package goquery_test

import (
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/fwojciec/wikidocu/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewExtractor().Extract("  ")

		assert.Equal(t, wikidocu.EINVALID, wikidocu.ErrorCode(err))
	})

	t.Run("selects docusaurus markdown container", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Intro | Docs</title></head><body>
<a id="__docusaurus_skipToContent_fallback">Skip</a>
<nav class="navbar">Top navigation</nav>
<main><div class="theme-doc-markdown markdown"><h1>Intro</h1><p>Install the CLI first.</p></div>
<div class="theme-doc-footer">Edit this page</div></main>
</body></html>`

		result, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Equal(t, "Intro | Docs", result.Title)
		assert.Contains(t, result.ContentHTML, "Install the CLI first.")
		assert.NotContains(t, result.ContentHTML, "Edit this page")
		assert.NotContains(t, result.ContentHTML, "Top navigation")
	})

	t.Run("strips chrome inside generic main", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><main>
<nav>Breadcrumbs</nav>
<p>Body text.</p>
<script>track()</script>
</main></body></html>`

		result, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Body text.")
		assert.NotContains(t, result.ContentHTML, "Breadcrumbs")
		assert.NotContains(t, result.ContentHTML, "track()")
	})

	t.Run("prefers og:title then falls back to h1", func(t *testing.T) {
		t.Parallel()

		withOG, err := goquery.NewExtractor().Extract(`<html><head><title>T</title><meta property="og:title" content="OG Title"></head><body><p>x</p></body></html>`)
		require.NoError(t, err)
		assert.Equal(t, "OG Title", withOG.Title)

		withH1, err := goquery.NewExtractor().Extract(`<html><body><h1>Heading</h1><p>x</p></body></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Heading", withH1.Title)
	})

	t.Run("returns empty content when page has no text", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewExtractor().Extract(`<html><body><nav>only nav</nav></body></html>`)

		require.NoError(t, err)
		assert.Empty(t, result.ContentHTML)
	})
}
