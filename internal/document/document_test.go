package document

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_ParsesFrontmatterAndBody(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "hello.md", `---
title: Hello World
date: 2024-03-01T10:00:00Z
tags: [go, testing]
---
Body text.
`)

	r := Load(dir, "hello.md", Options{})
	require.True(t, r.IsOK())

	doc := r.Unwrap()
	require.Equal(t, "hello.md", doc.Path)
	require.Equal(t, "Hello World", doc.Meta.Title)
	require.Equal(t, []string{"go", "testing"}, doc.Meta.Tags)
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), doc.Meta.Date)
	require.Equal(t, "Body text.\n", string(doc.Body))
}

func TestLoad_NoFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "plain.md", "Just text.\n")

	r := Load(dir, "plain.md", Options{})
	require.True(t, r.IsOK())
	require.Equal(t, "Just text.\n", string(r.Unwrap().Body))
	require.Empty(t, r.Unwrap().Meta.Title)
}

func TestLoad_MissingClosingDelimiter(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "broken.md", "---\ntitle: Oops\nNo closing delimiter.\n")

	r := Load(dir, "broken.md", Options{})
	require.True(t, r.IsErr())

	located, ok := r.Detail().(*result.Located)
	require.True(t, ok)
	require.Equal(t, "broken.md", located.Path)
	require.Equal(t, 1, located.Line)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.md", "---\ntitle: [unclosed\n---\nBody.\n")

	r := Load(dir, "bad.md", Options{})
	require.True(t, r.IsErr())

	located, ok := r.Detail().(*result.Located)
	require.True(t, ok)
	require.Contains(t, located.Text, "invalid frontmatter")
}

func TestLoad_MissingFileKeepsErrno(t *testing.T) {
	r := Load(t.TempDir(), "absent.md", Options{})
	require.True(t, r.IsErr())

	located, ok := r.Detail().(*result.Located)
	require.True(t, ok)
	require.Equal(t, "absent.md", located.Path)
	require.NotZero(t, located.Code)
}

func TestLoadDir_WalksMarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", "---\ntitle: A\n---\nA.\n")
	writeDoc(t, dir, "nested/b.md", "---\ntitle: B\n---\nB.\n")
	writeDoc(t, dir, "notes.txt", "ignored")

	results := LoadDir(dir, Options{})
	require.Len(t, results, 2)

	agg := result.AggregateValues("loading documents", results)
	require.True(t, agg.IsOK())

	docs := agg.Unwrap()
	require.Equal(t, "a.md", docs[0].Path)
	require.Equal(t, "nested/b.md", docs[1].Path)
}

func TestLoadDir_PartialFailureSurvivesAggregation(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "good.md", "---\ntitle: Good\n---\nFine.\n")
	writeDoc(t, dir, "bad.md", "---\nbroken\n")

	results := LoadDir(dir, Options{})
	agg := result.AggregateValues("loading documents", results)
	require.True(t, agg.IsErr())

	group, ok := agg.Detail().(*result.Group)
	require.True(t, ok)
	require.Equal(t, "loading documents", group.Label)
	require.Len(t, group.Children, 1)
}

func TestDocument_Name(t *testing.T) {
	d := &Document{Path: "posts/hello-world.md"}
	require.Equal(t, "hello-world", d.Name())
}
