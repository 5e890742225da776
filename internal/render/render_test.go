package render

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func testPage(t *testing.T) *site.Page {
	t.Helper()
	r := site.FromDocument(&document.Document{
		Path: "posts/hello-world.md",
		Meta: document.Meta{
			Title: "Hello World",
			Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Tags:  []string{"go"},
		},
	})
	require.True(t, r.IsOK())
	return r.Unwrap()
}

func TestPage_RendersContentAndMeta(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	out, err := e.Page(PageData{
		Site:    SiteData{Title: "Test Site", BaseURL: "/"},
		Page:    testPage(t),
		Content: template.HTML("<p>body</p>"),
	})
	require.NoError(t, err)

	html := string(out)
	require.Contains(t, html, "<h1>Hello World</h1>")
	require.Contains(t, html, "<p>body</p>")
	require.Contains(t, html, "March 1, 2024")
	require.Contains(t, html, "Test Site")
}

func TestIndex_ListsPosts(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	out, err := e.Index(IndexData{
		Site:  SiteData{Title: "Test Site"},
		Posts: []*site.Page{testPage(t)},
	})
	require.NoError(t, err)
	require.Contains(t, string(out), `href="/posts/hello-world/"`)
}

func TestTagIndex_NamesTag(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	out, err := e.TagIndex(IndexData{
		Site:  SiteData{Title: "Test Site"},
		Tag:   "go",
		Posts: []*site.Page{testPage(t)},
	})
	require.NoError(t, err)
	require.Contains(t, string(out), "go")
}

func TestNew_OverridesFromLayoutsDir(t *testing.T) {
	dir := t.TempDir()
	override := `{{define "page"}}OVERRIDDEN {{.Page.Title}}{{end}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(override), 0o600))

	e, err := New(dir)
	require.NoError(t, err)

	out, err := e.Page(PageData{Page: testPage(t)})
	require.NoError(t, err)
	require.Equal(t, "OVERRIDDEN Hello World", string(out))
}
