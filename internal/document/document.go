// Package document loads markdown source documents with YAML frontmatter.
// Each load yields a result.Result so a batch of documents can be folded by
// the build pipeline without losing per-file failure detail.
package document

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

// Meta holds the typed frontmatter fields of a document.
type Meta struct {
	Title       string    `yaml:"title"`
	Date        time.Time `yaml:"date"`
	Tags        []string  `yaml:"tags,omitempty"`
	Slug        string    `yaml:"slug,omitempty"`
	Draft       bool      `yaml:"draft,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

// Document is one markdown source file with parsed frontmatter.
type Document struct {
	// Path is relative to the content directory and uses forward slashes.
	Path string
	Meta Meta
	Body []byte
}

// Name returns the file name without the markdown extension, used as the
// default slug.
func (d *Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Options controls document loading.
type Options struct {
	// GitDates enables falling back to the last git commit touching a file
	// when its frontmatter carries no date.
	GitDates bool
}

// Load reads and parses a single document. The returned result attributes
// failures to the file; operating-system failures keep their platform error
// code so the renderer can resolve it to a localized message.
func Load(dir, rel string, opts Options) result.Result[*Document] {
	full := filepath.Join(dir, rel)

	content, err := os.ReadFile(full)
	if err != nil {
		return result.Err[*Document](result.LocatedFrom(rel, err))
	}

	fm, body, _, err := splitFrontmatter(content)
	if err != nil {
		return result.Err[*Document](&result.Located{Path: rel, Line: 1, Text: err.Error()})
	}

	meta, err := parseMeta(fm)
	if err != nil {
		return result.Err[*Document](&result.Located{Path: rel, Text: "invalid frontmatter: " + err.Error()})
	}

	if meta.Date.IsZero() && opts.GitDates {
		if when, err := lastCommitTime(full); err == nil {
			meta.Date = when
		}
	}

	return result.Ok(&Document{
		Path: filepath.ToSlash(rel),
		Meta: meta,
		Body: body,
	})
}

// LoadDir loads every markdown file under dir, one result per file, in
// lexical walk order. Callers fold the slice with result.AggregateValues.
func LoadDir(dir string, opts Options) []result.Result[*Document] {
	var results []result.Result[*Document]

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel := relOrSelf(dir, path)
			results = append(results, result.Err[*Document](result.LocatedFrom(rel, err)))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel := relOrSelf(dir, path)
		results = append(results, Load(dir, rel, opts))
		return nil
	})
	if err != nil {
		results = append(results, result.Err[*Document](result.LocatedFrom(dir, err)))
	}

	return results
}

func relOrSelf(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}
