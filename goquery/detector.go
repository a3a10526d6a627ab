package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Framework identifies the documentation generator that produced a page.
type Framework string

// Framework constants.
const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
)

// generatorNames maps substrings of <meta name="generator"> to frameworks.
var generatorNames = []struct {
	name      string
	framework Framework
}{
	{"sphinx", FrameworkSphinx},
	{"gitbook", FrameworkGitBook},
	{"docusaurus", FrameworkDocusaurus},
	{"mkdocs", FrameworkMkDocs},
	{"vitepress", FrameworkVitePress},
	{"vuepress", FrameworkVuePress},
	{"nextra", FrameworkNextra},
}

// markers are structural selectors unique to each framework, checked in order.
var markers = []struct {
	framework Framework
	selectors []string
}{
	{FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container", ".theme-doc-markdown"}},
	{FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar"}},
	{FrameworkVitePress, []string{"#VPContent", ".VPDoc", ".VPDocAsideOutline"}},
	{FrameworkVuePress, []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"}},
	{FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"}},
}

// Detect identifies the documentation framework of doc from its meta
// generator tag or framework-specific markup. Returns FrameworkUnknown if
// nothing matches.
func Detect(doc *goquery.Document) Framework {
	if generator, ok := doc.Find("meta[name='generator']").Last().Attr("content"); ok {
		generator = strings.ToLower(generator)
		for _, g := range generatorNames {
			if strings.Contains(generator, g.name) {
				return g.framework
			}
		}
	}

	for _, m := range markers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}

	if hasGitBookClasses(doc) {
		return FrameworkGitBook
	}
	return FrameworkUnknown
}

// hasGitBookClasses reports whether the html element carries at least two of
// GitBook's theme classes.
func hasGitBookClasses(doc *goquery.Document) bool {
	class, _ := doc.Find("html").Attr("class")
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
