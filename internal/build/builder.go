// Package build orchestrates the site pipeline: load documents, assemble
// pages, render, write output, copy assets, build indexes, and optionally
// verify links. Every stage reports result values; the run folds stage
// outcomes into one result tree that the CLI hands to internal/report.
package build

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/result"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

const buildLabel = "building site"

// Stage labels double as aggregate headers in the final report.
const (
	stageLoad    = "loading documents"
	stagePages   = "assembling pages"
	stageRender  = "rendering pages"
	stageWrite   = "writing pages"
	stageAssets  = "copying assets"
	stageIndexes = "rendering indexes"
	stageLinks   = "verifying links"
)

// Builder runs the site pipeline for one configuration.
type Builder struct {
	cfg      *config.Config
	engine   *render.Engine
	recorder metrics.Recorder
	cache    *Cache
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// New creates a Builder, parsing templates and opening the render cache if
// one is configured.
func New(cfg *config.Config, opts ...Option) (*Builder, error) {
	engine, err := render.New(cfg.Content.Layouts)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:      cfg,
		engine:   engine,
		recorder: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(b)
	}

	if cfg.Build.CachePath != "" {
		cache, err := OpenCache(cfg.Build.CachePath)
		if err != nil {
			return nil, err
		}
		b.cache = cache
	}
	return b, nil
}

// Close releases builder resources.
func (b *Builder) Close() error {
	if b.cache != nil {
		return b.cache.Close()
	}
	return nil
}

// Run executes the full pipeline and returns the folded outcome. It never
// returns a Go error: every failure is carried in the result tree.
func (b *Builder) Run(ctx context.Context) result.Status {
	start := time.Now()
	buildID := uuid.NewString()
	b.recorder.BuildStarted()
	slog.Info("Build started", logfields.BuildID(buildID), logfields.Path(b.cfg.Content.Dir))

	res := b.run(ctx, buildID)

	outcome := "success"
	if res.IsErr() {
		outcome = "failure"
	}
	elapsed := time.Since(start)
	b.recorder.BuildCompleted(outcome, elapsed.Seconds())
	slog.Info("Build finished",
		logfields.BuildID(buildID),
		slog.String("outcome", outcome),
		logfields.DurationMS(float64(elapsed.Milliseconds())),
	)
	return res
}

func (b *Builder) run(ctx context.Context, buildID string) result.Status {
	var stages []result.Status

	docsRes := b.stageDocuments(buildID)
	stages = append(stages, docsRes.Status())
	if docsRes.IsErr() {
		return result.Aggregate(buildLabel, stages)
	}

	pagesRes := b.stagePages(buildID, docsRes.Unwrap())
	stages = append(stages, pagesRes.Status())
	if pagesRes.IsErr() {
		return result.Aggregate(buildLabel, stages)
	}
	pages := pagesRes.Unwrap()

	renderedRes := b.stageRender(ctx, buildID, pages)
	stages = append(stages, renderedRes.Status())
	if renderedRes.IsErr() {
		return result.Aggregate(buildLabel, stages)
	}

	stages = append(stages,
		b.stageWrite(ctx, buildID, renderedRes.Unwrap()),
		b.stageAssets(buildID),
		b.stageIndexes(buildID, pages),
	)
	if b.cfg.Build.LinkCheck {
		stages = append(stages, b.stageLinkCheck(buildID))
	}
	return result.Aggregate(buildLabel, stages)
}

// record logs and measures one finished stage.
func (b *Builder) record(buildID, stage string, start time.Time, st result.Status) {
	outcome := "success"
	if st.IsErr() {
		outcome = "failure"
	}
	elapsed := time.Since(start)
	b.recorder.StageCompleted(stage, outcome, elapsed.Seconds())
	slog.Debug("Stage finished",
		logfields.BuildID(buildID),
		logfields.Stage(stage),
		slog.String("outcome", outcome),
		logfields.DurationMS(float64(elapsed.Milliseconds())),
	)
}

func (b *Builder) stageDocuments(buildID string) result.Result[[]*document.Document] {
	start := time.Now()
	results := document.LoadDir(b.cfg.Content.Dir, document.Options{GitDates: b.cfg.Build.GitDates})
	res := result.AggregateValues(stageLoad, results)
	b.record(buildID, stageLoad, start, res.Status())
	return res
}

func (b *Builder) stagePages(buildID string, docs []*document.Document) result.Result[[]*site.Page] {
	start := time.Now()

	var results []result.Result[*site.Page]
	for _, doc := range docs {
		if doc.Meta.Draft && !b.cfg.Build.Drafts {
			continue
		}
		results = append(results, site.FromDocument(doc))
	}
	res := result.AggregateValues(stagePages, results)
	b.record(buildID, stagePages, start, res.Status())
	return res
}

// renderedPage pairs a page with its final HTML. A cache-fresh page keeps
// skipped=true and no HTML; its output file is already on disk.
type renderedPage struct {
	page    *site.Page
	html    []byte
	skipped bool
}

// stageRender renders pages concurrently. Workers never abort the batch:
// each page reports its own result so one broken page cannot hide another.
func (b *Builder) stageRender(ctx context.Context, buildID string, pages []*site.Page) result.Result[[]renderedPage] {
	start := time.Now()

	results := make([]result.Result[renderedPage], len(pages))
	sem := make(chan struct{}, b.cfg.Build.Workers)
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page *site.Page) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = b.renderPage(ctx, page)
		}(i, page)
	}
	wg.Wait()

	res := result.AggregateValues(stageRender, results)
	if res.IsOK() {
		rendered := 0
		for _, rp := range res.Unwrap() {
			if !rp.skipped {
				rendered++
			}
		}
		b.recorder.PagesRendered(rendered)
	}
	b.record(buildID, stageRender, start, res.Status())
	return res
}

func (b *Builder) renderPage(ctx context.Context, page *site.Page) result.Result[renderedPage] {
	if err := ctx.Err(); err != nil {
		return result.Err[renderedPage](result.Msgf("render canceled: %v", err))
	}

	hash := pageHash(page)
	if b.cache != nil && b.cache.Fresh(ctx, page.Doc.Path, hash) {
		if _, err := os.Stat(filepath.Join(b.cfg.Build.Output, page.OutputPath)); err == nil {
			return result.Ok(renderedPage{page: page, skipped: true})
		}
	}

	body, err := markdown.Render(page.Doc.Body)
	if err != nil {
		return result.Err[renderedPage](&result.Located{Path: page.Doc.Path, Text: fmt.Sprintf("markdown rendering failed: %v", err)})
	}

	html, err := b.engine.Page(render.PageData{
		Site:    b.siteData(),
		Page:    page,
		Content: template.HTML(body),
	})
	if err != nil {
		return result.Err[renderedPage](&result.Located{Path: page.Doc.Path, Text: err.Error()})
	}
	return result.Ok(renderedPage{page: page, html: html})
}

func (b *Builder) stageWrite(ctx context.Context, buildID string, rendered []renderedPage) result.Status {
	start := time.Now()

	var results []result.Status
	for _, rp := range rendered {
		if rp.skipped {
			continue
		}
		results = append(results, b.writePage(ctx, rp))
	}
	res := result.Aggregate(stageWrite, results)
	b.record(buildID, stageWrite, start, res)
	return res
}

func (b *Builder) writePage(ctx context.Context, rp renderedPage) result.Status {
	out := filepath.Join(b.cfg.Build.Output, rp.page.OutputPath)
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return result.FailFrom(rp.page.OutputPath, err)
	}
	if err := os.WriteFile(out, rp.html, 0o644); err != nil {
		return result.FailFrom(rp.page.OutputPath, err)
	}

	if b.cache != nil {
		if err := b.cache.Put(ctx, rp.page.Doc.Path, pageHash(rp.page), rp.page.OutputPath); err != nil {
			// A cache write failure degrades incremental builds but must not
			// fail the page itself.
			slog.Warn("Render cache update failed", logfields.Path(rp.page.Doc.Path), logfields.Error(err))
		}
	}
	return result.Done()
}

func (b *Builder) stageAssets(buildID string) result.Status {
	start := time.Now()
	res := result.Aggregate(stageAssets, b.copyAssets())
	b.record(buildID, stageAssets, start, res)
	return res
}

func (b *Builder) copyAssets() []result.Status {
	staticDir := b.cfg.Content.Static
	if staticDir == "" {
		return nil
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		return nil
	}

	var results []result.Status
	err := filepath.WalkDir(staticDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			results = append(results, result.FailFrom(path, err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(staticDir, path)
		if relErr != nil {
			rel = path
		}
		results = append(results, copyFile(path, filepath.Join(b.cfg.Build.Output, rel), rel))
		return nil
	})
	if err != nil {
		results = append(results, result.FailFrom(staticDir, err))
	}
	return results
}

func copyFile(src, dst, rel string) result.Status {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return result.FailFrom(rel, err)
	}
	defer func() {
		_ = in.Close() // read-only
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return result.FailFrom(rel, err)
	}
	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return result.FailFrom(rel, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return result.FailFrom(rel, err)
	}
	if err := out.Close(); err != nil {
		return result.FailFrom(rel, err)
	}
	return result.Done()
}

func (b *Builder) stageIndexes(buildID string, pages []*site.Page) result.Status {
	start := time.Now()

	var results []result.Status
	posts := site.Posts(pages)

	if !hasHomePage(pages) {
		results = append(results, b.writeIndex("index.html", render.IndexData{
			Site:  b.siteData(),
			Posts: posts,
		}, b.engine.Index))
	}

	tags := site.Tags(pages)
	for _, tag := range sortedKeys(tags) {
		results = append(results, b.writeIndex(
			filepath.Join("tags", tag, "index.html"),
			render.IndexData{Site: b.siteData(), Tag: tag, Posts: tags[tag]},
			b.engine.TagIndex,
		))
	}

	res := result.Aggregate(stageIndexes, results)
	b.record(buildID, stageIndexes, start, res)
	return res
}

func (b *Builder) writeIndex(rel string, data render.IndexData, renderFn func(render.IndexData) ([]byte, error)) result.Status {
	html, err := renderFn(data)
	if err != nil {
		return result.Failf("%s: %v", rel, err)
	}
	out := filepath.Join(b.cfg.Build.Output, rel)
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return result.FailFrom(rel, err)
	}
	if err := os.WriteFile(out, html, 0o644); err != nil {
		return result.FailFrom(rel, err)
	}
	return result.Done()
}

func (b *Builder) stageLinkCheck(buildID string) result.Status {
	start := time.Now()
	res := result.Aggregate(stageLinks, linkcheck.Verify(b.cfg.Build.Output))
	b.record(buildID, stageLinks, start, res)
	return res
}

func (b *Builder) siteData() render.SiteData {
	return render.SiteData{
		Title:       b.cfg.Site.Title,
		Description: b.cfg.Site.Description,
		BaseURL:     b.cfg.Site.BaseURL,
		Author:      b.cfg.Site.Author,
	}
}

func hasHomePage(pages []*site.Page) bool {
	for _, p := range pages {
		if p.URL == "/" {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]*site.Page) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
