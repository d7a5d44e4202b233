package site

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// Sitemap encodes the sitemap.xml for pages, in the given order.
func Sitemap(cfg *Config, pages []Page) ([]byte, error) {
	set := urlset{Xmlns: sitemapNamespace}
	for _, p := range pages {
		if p.NoIndex {
			continue
		}
		u := sitemapURL{
			Loc:        cfg.AbsoluteURL(p.Path),
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		}
		if !p.LastMod.IsZero() {
			u.LastMod = p.LastMod.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// Robots returns robots.txt allowing every crawler and pointing at the sitemap.
func Robots(cfg *Config) []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	fmt.Fprintf(&b, "\nSitemap: %s\n", cfg.AbsoluteURL("/sitemap.xml"))
	return []byte(b.String())
}
