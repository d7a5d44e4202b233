package site

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultExportConcurrency bounds the number of pages rendered at once.
const DefaultExportConcurrency = 8

// Exporter writes the whole site to a directory for static hosting.
type Exporter struct {
	renderer    *Renderer
	logger      *slog.Logger
	concurrency int
}

// NewExporter creates an Exporter. concurrency <= 0 uses
// DefaultExportConcurrency.
func NewExporter(renderer *Renderer, logger *slog.Logger, concurrency int) *Exporter {
	if concurrency <= 0 {
		concurrency = DefaultExportConcurrency
	}
	return &Exporter{renderer: renderer, logger: logger, concurrency: concurrency}
}

// ExportStats summarizes one export.
type ExportStats struct {
	Pages int
	Files int
}

// Export renders every page to outDir/<path>/index.html, plus 404.html,
// sitemap.xml, robots.txt and the static assets. Links carry the configured
// base path, but files are laid out relative to outDir.
func (e *Exporter) Export(ctx context.Context, outDir string) (ExportStats, error) {
	var stats ExportStats
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	pages := e.renderer.Pages()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, page := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := e.renderer.Render(&buf, page, nil); err != nil {
				return err
			}
			return writeFile(outDir, pageFile(page.Path), buf.Bytes())
		})
	}

	g.Go(func() error {
		sitemap, err := e.renderer.Sitemap()
		if err != nil {
			return err
		}
		return writeFile(outDir, "sitemap.xml", sitemap)
	})
	g.Go(func() error {
		return writeFile(outDir, "robots.txt", Robots(e.renderer.Config()))
	})
	g.Go(func() error {
		// Stops GitHub Pages from running Jekyll over the export.
		return writeFile(outDir, ".nojekyll", nil)
	})

	assets, err := fs.Glob(Static(), "*")
	if err != nil {
		return stats, err
	}
	for _, name := range assets {
		g.Go(func() error {
			data, err := fs.ReadFile(Static(), name)
			if err != nil {
				return err
			}
			return writeFile(outDir, filepath.Join("static", name), data)
		})
	}

	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("export failed: %w", err)
	}

	stats.Pages = len(pages)
	stats.Files = len(pages) + 3 + len(assets)
	e.logger.Info("Site exported", "dir", outDir, "pages", stats.Pages, "files", stats.Files)
	return stats, nil
}

// pageFile maps a page path to its file: "/" is index.html, the not found
// page is 404.html, everything else is <path>/index.html.
func pageFile(path string) string {
	switch path {
	case "/":
		return "index.html"
	case NotFoundPath:
		return "404.html"
	}
	return filepath.Join(filepath.FromSlash(strings.Trim(path, "/")), "index.html")
}

func writeFile(outDir, name string, data []byte) error {
	path := filepath.Join(outDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
