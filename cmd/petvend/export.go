package main

import (
	"github.com/spf13/cobra"

	"github.com/petvend/site/internal/site"
)

var (
	exportOut         string
	exportGitHubPages bool
	exportConcurrency int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the site to static files",
	Long: `Renders every page, sitemap.xml, robots.txt and the static assets into the
output directory, ready for GitHub Pages or any static host.

Example:
  petvend export --out public --github-pages`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config, \"out\")")
	exportCmd.Flags().BoolVar(&exportGitHubPages, "github-pages", false, "prefix links with /<repo> for a GitHub Pages project site")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", site.DefaultExportConcurrency, "pages rendered in parallel")
}

func runExport(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("github-pages") {
		cfg.Site.GitHubPages = exportGitHubPages
	}
	out := cfg.Site.OutDir
	if exportOut != "" {
		out = exportOut
	}

	renderer, err := loadRenderer()
	if err != nil {
		return err
	}

	stats, err := site.NewExporter(renderer, logger, exportConcurrency).Export(cmd.Context(), out)
	if err != nil {
		return err
	}
	cmd.Printf("Exported %d pages and %d files to %s\n", stats.Pages, stats.Files, out)
	return nil
}
