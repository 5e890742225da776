// Package linkcheck verifies that internal links in rendered HTML resolve to
// files in the output tree.
package linkcheck

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

// linkAttrs maps HTML tags to the attribute that carries a link.
var linkAttrs = map[string]string{
	"a":      "href",
	"img":    "src",
	"link":   "href",
	"script": "src",
}

// Verify walks every .html file under outputDir and checks that internal
// links point at existing files. Each file yields one result for aggregation;
// a file with broken links fails with one located failure per link, grouped
// under the file.
func Verify(outputDir string) []result.Status {
	var results []result.Status

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			results = append(results, result.FailAt(relOrSelf(outputDir, p), 0, err.Error()))
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		results = append(results, verifyFile(outputDir, p))
		return nil
	})
	if err != nil {
		results = append(results, result.FailAt(outputDir, 0, err.Error()))
	}

	return results
}

func verifyFile(outputDir, htmlPath string) result.Status {
	rel := relOrSelf(outputDir, htmlPath)

	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return result.FailAt(rel, 0, err.Error())
	}
	defer func() {
		_ = file.Close() // read-only
	}()

	links, err := extractLinks(file)
	if err != nil {
		return result.FailAt(rel, 0, fmt.Sprintf("failed to parse HTML: %v", err))
	}

	var broken []result.Status
	for _, link := range links {
		if !isInternal(link) {
			continue
		}
		if !targetExists(outputDir, rel, link) {
			broken = append(broken, result.FailAt(rel, 0, fmt.Sprintf("broken internal link %q", link)))
		}
	}
	return result.Aggregate(rel, broken)
}

// extractLinks collects href/src values from anchor, image, stylesheet, and
// script elements.
func extractLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						links = append(links, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// isInternal reports whether a link should resolve inside the output tree.
func isInternal(link string) bool {
	if strings.HasPrefix(link, "#") {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// targetExists resolves an internal link against the output tree. Links
// ending in / resolve to the directory's index.html.
func targetExists(outputDir, fromRel, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	target := u.Path
	if target == "" {
		return true // pure query/fragment
	}

	if !strings.HasPrefix(target, "/") {
		target = path.Join("/", path.Dir(filepath.ToSlash(fromRel)), target)
	}
	if strings.HasSuffix(target, "/") {
		target += "index.html"
	}

	full := filepath.Join(outputDir, filepath.FromSlash(strings.TrimPrefix(target, "/")))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return true
}

func relOrSelf(dir, p string) string {
	if rel, err := filepath.Rel(dir, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
