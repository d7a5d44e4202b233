// Command petvend serves and exports the PetVend franchise site, and runs its
// calculators from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petvend/site/internal/config"
	"github.com/petvend/site/internal/content"
	"github.com/petvend/site/internal/site"
	"github.com/petvend/site/pkg/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "petvend",
	Short: "PetVend franchise site and calculators",
	Long: `petvend serves the PetVend franchise site with its calculator and lead
APIs, exports it as static files, and runs the calculators locally.

Configuration is read from a YAML file (--config), then environment variables
such as PORT, DB_PATH, JWT_SECRET and REDIS_ADDR, then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}
		logger = logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the server config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")

	rootCmd.AddCommand(serveCmd, exportCmd, calcCmd, adminCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadRenderer reads the site config and Markdown content.
func loadRenderer() (*site.Renderer, error) {
	siteCfg, err := site.LoadConfig(cfg.Site.ConfigPath, cfg.Site.GitHubPages)
	if err != nil {
		return nil, err
	}
	lib, err := content.NewLoader().Load(cfg.Site.ContentDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Content loaded",
		"articles", len(lib.Articles),
		"case_studies", len(lib.CaseStudies),
		"dir", cfg.Site.ContentDir,
	)
	return site.NewRenderer(siteCfg, lib)
}
