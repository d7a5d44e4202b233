// Package site renders the PetVend marketing site: the catalog, franchise
// economics, calculators, blog and case studies, together with their SEO
// metadata, sitemap and robots.txt. Pages are served live by the HTTP server
// or exported to flat files for static hosting.
package site

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petvend/site/internal/models"
)

var ErrInvalidConfig = errors.New("invalid site config")

const (
	defaultCurrency       = "RUB"
	defaultCurrencySymbol = "₽"
)

// Config is the content of site.yaml.
type Config struct {
	Name        string `yaml:"name"`
	Tagline     string `yaml:"tagline"`
	Description string `yaml:"description"`

	// BaseURL is the public origin, without the base path.
	BaseURL string `yaml:"baseURL"`

	// Repo is the GitHub repository name the site is published under when
	// exported for GitHub Pages.
	Repo string `yaml:"repo"`

	// Currency is the ISO 4217 code of every price and calculator amount.
	Currency string `yaml:"currency"`
	// CurrencySymbol is appended to formatted amounts.
	CurrencySymbol string `yaml:"currencySymbol"`

	// APIURL is the origin serving the RPC API. Empty means the site's own
	// origin, which is right for `petvend serve` but not for static hosting.
	APIURL string `yaml:"apiURL"`

	Email   string   `yaml:"email"`
	Phone   string   `yaml:"phone"`
	Address string   `yaml:"address"`
	Logo    string   `yaml:"logo"`
	Social  []string `yaml:"social"`

	Products []models.Product          `yaml:"products"`
	Packages []models.FranchisePackage `yaml:"packages"`
	Reviews  []models.Review           `yaml:"reviews"`
	FAQ      []models.FAQItem          `yaml:"faq"`

	// BasePath prefixes every site-relative link, e.g. "/petvend". Empty
	// when the site is served from the domain root.
	BasePath string `yaml:"-"`
}

// LoadConfig reads site.yaml. With githubPages set, links are prefixed with
// "/<repo>" so the export works as a GitHub Pages project site.
func LoadConfig(path string, githubPages bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	return ParseConfig(data, githubPages)
}

// ParseConfig parses site.yaml content. See LoadConfig.
func ParseConfig(data []byte, githubPages bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse site config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = defaultCurrencySymbol
	}
	if githubPages {
		if strings.Trim(cfg.Repo, "/") == "" {
			return nil, fmt.Errorf("%w: repo is required for GitHub Pages", ErrInvalidConfig)
		}
		cfg.BasePath = "/" + strings.Trim(cfg.Repo, "/")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: baseURL must be an absolute URL, got %q", ErrInvalidConfig, c.BaseURL)
	}
	seen := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		if p.Slug == "" {
			return fmt.Errorf("%w: product %q has no slug", ErrInvalidConfig, p.Name)
		}
		if seen[p.Slug] {
			return fmt.Errorf("%w: duplicate product slug %q", ErrInvalidConfig, p.Slug)
		}
		seen[p.Slug] = true
	}
	for _, r := range c.Reviews {
		if r.Rating < 1 || r.Rating > 5 {
			return fmt.Errorf("%w: review by %q has rating %d, want 1-5", ErrInvalidConfig, r.Author, r.Rating)
		}
	}
	return nil
}

// Link returns the site-relative link for path, including the base path.
func (c *Config) Link(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BasePath + path
}

// AbsoluteURL returns the public URL for a site-relative path. Absolute
// URLs are returned unchanged.
func (c *Config) AbsoluteURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + c.Link(path)
}

// AverageRating is the mean review rating, or 0 without reviews.
func (c *Config) AverageRating() float64 {
	if len(c.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(c.Reviews))
}
