package site

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":        "hello-world",
		"Über Go!":           "uber-go",
		"  spaces  around  ": "spaces-around",
		"already-a-slug":     "already-a-slug",
		"C'est l'été":        "c-est-l-ete",
		"100% Coverage?":     "100-coverage",
		"":                   "",
		"!!!":                "",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func doc(path, title string, date time.Time, tags ...string) *document.Document {
	return &document.Document{
		Path: path,
		Meta: document.Meta{Title: title, Date: date, Tags: tags},
	}
}

func TestFromDocument_Post(t *testing.T) {
	r := FromDocument(doc("posts/hello-world.md", "Hello World", time.Now()))
	require.True(t, r.IsOK())

	p := r.Unwrap()
	require.Equal(t, KindPost, p.Kind)
	require.Equal(t, "hello-world", p.Slug)
	require.Equal(t, "/posts/hello-world/", p.URL)
	require.Equal(t, "posts/hello-world/index.html", p.OutputPath)
}

func TestFromDocument_StandalonePage(t *testing.T) {
	r := FromDocument(doc("about.md", "About", time.Time{}))
	require.True(t, r.IsOK())

	p := r.Unwrap()
	require.Equal(t, KindPage, p.Kind)
	require.Equal(t, "/about/", p.URL)
	require.Equal(t, "about/index.html", p.OutputPath)
}

func TestFromDocument_HomePage(t *testing.T) {
	r := FromDocument(doc("index.md", "Home", time.Time{}))
	require.True(t, r.IsOK())

	p := r.Unwrap()
	require.Equal(t, "/", p.URL)
	require.Equal(t, "index.html", p.OutputPath)
}

func TestFromDocument_FrontmatterSlugWins(t *testing.T) {
	d := doc("posts/some-file.md", "Title", time.Now())
	d.Meta.Slug = "custom-slug"

	p := FromDocument(d).Unwrap()
	require.Equal(t, "/posts/custom-slug/", p.URL)
}

func TestFromDocument_UnsluggableFails(t *testing.T) {
	r := FromDocument(doc("posts/!!!.md", "", time.Now()))
	require.True(t, r.IsErr())
}

func TestPage_TitleFallsBackToFileName(t *testing.T) {
	p := FromDocument(doc("posts/untitled-draft.md", "", time.Now())).Unwrap()
	require.Equal(t, "untitled-draft", p.Title())
}

func TestPosts_SortedNewestFirst(t *testing.T) {
	old := FromDocument(doc("posts/old.md", "Old", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))).Unwrap()
	mid := FromDocument(doc("posts/mid.md", "Mid", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))).Unwrap()
	app := FromDocument(doc("about.md", "About", time.Time{})).Unwrap()
	newest := FromDocument(doc("posts/new.md", "New", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))).Unwrap()

	posts := Posts([]*Page{old, mid, app, newest})
	require.Len(t, posts, 3)
	require.Equal(t, "new", posts[0].Slug)
	require.Equal(t, "mid", posts[1].Slug)
	require.Equal(t, "old", posts[2].Slug)
}

func TestTags_GroupsAndSlugifies(t *testing.T) {
	a := FromDocument(doc("posts/a.md", "A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Go", "Web Dev")).Unwrap()
	b := FromDocument(doc("posts/b.md", "B", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "go")).Unwrap()

	tags := Tags([]*Page{a, b})
	require.Len(t, tags, 2)
	require.Len(t, tags["go"], 2)
	require.Equal(t, "b", tags["go"][0].Slug) // newest first
	require.Len(t, tags["web-dev"], 1)
}
