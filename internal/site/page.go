// Package site maps loaded documents onto the published site structure:
// slugs, URLs, and output paths.
package site

import (
	"path"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

// Kind distinguishes dated posts from standalone pages.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Page is one publishable unit of the site.
type Page struct {
	Doc  *document.Document
	Kind Kind
	Slug string
	// URL is the site-relative address, always with a leading slash and a
	// trailing slash for directory-style pages.
	URL string
	// OutputPath is relative to the output directory.
	OutputPath string
}

// Title returns the display title, falling back to the file name.
func (p *Page) Title() string {
	if p.Doc.Meta.Title != "" {
		return p.Doc.Meta.Title
	}
	return p.Doc.Name()
}

// Date returns the publication date.
func (p *Page) Date() time.Time {
	return p.Doc.Meta.Date
}

// FromDocument derives the site placement of a document. Documents under a
// "posts/" directory become dated posts at /posts/<slug>/; everything else is
// a standalone page at /<slug>/. A document named index.md at the content
// root becomes the home page.
func FromDocument(doc *document.Document) result.Result[*Page] {
	slug := doc.Meta.Slug
	if slug == "" {
		slug = Slugify(doc.Name())
	}
	if slug == "" {
		return result.Err[*Page](&result.Located{
			Path: doc.Path,
			Text: "cannot derive a slug: set one in frontmatter",
		})
	}

	p := &Page{Doc: doc, Slug: slug}
	switch {
	case doc.Path == "index.md":
		p.Kind = KindPage
		p.URL = "/"
		p.OutputPath = "index.html"
	case strings.HasPrefix(doc.Path, "posts/"):
		p.Kind = KindPost
		p.URL = "/posts/" + slug + "/"
		p.OutputPath = path.Join("posts", slug, "index.html")
	default:
		p.Kind = KindPage
		p.URL = "/" + slug + "/"
		p.OutputPath = path.Join(slug, "index.html")
	}
	return result.Ok(p)
}

// Posts filters and sorts the dated posts, newest first. Ties break on slug
// so output is deterministic.
func Posts(pages []*Page) []*Page {
	var posts []*Page
	for _, p := range pages {
		if p.Kind == KindPost {
			posts = append(posts, p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date().Equal(posts[j].Date()) {
			return posts[i].Date().After(posts[j].Date())
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts
}

// Tags collects the tag vocabulary across pages, each tag with its pages
// sorted newest first. Tag names are slugified for URLs.
func Tags(pages []*Page) map[string][]*Page {
	tags := make(map[string][]*Page)
	for _, p := range Posts(pages) {
		for _, tag := range p.Doc.Meta.Tags {
			key := Slugify(tag)
			if key == "" {
				continue
			}
			tags[key] = append(tags[key], p)
		}
	}
	return tags
}
