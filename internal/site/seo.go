package site

import (
	"encoding/json"
	"html/template"
	"time"

	"github.com/petvend/site/internal/models"
)

const schemaContext = "https://schema.org"

// SEO is the metadata rendered into a page head.
type SEO struct {
	Title       string
	Description string
	// Canonical is the absolute URL of the page.
	Canonical string
	// OGType is the OpenGraph type, "website" or "article".
	OGType string
	Image  string
	// JSONLD holds encoded structured data blocks.
	JSONLD []template.JS
}

type crumb struct {
	Name string
	Path string
}

// ldBuilder collects JSON-LD documents for one page.
type ldBuilder struct {
	cfg    *Config
	blocks []template.JS
	err    error
}

func (b *ldBuilder) add(doc map[string]any) {
	if b.err != nil {
		return
	}
	doc["@context"] = schemaContext
	// json.Marshal escapes <, > and &, so the result is safe inside a script element.
	data, err := json.Marshal(doc)
	if err != nil {
		b.err = err
		return
	}
	b.blocks = append(b.blocks, template.JS(data))
}

func (b *ldBuilder) organization() {
	org := map[string]any{
		"@type": "Organization",
		"name":  b.cfg.Name,
		"url":   b.cfg.AbsoluteURL("/"),
	}
	if b.cfg.Logo != "" {
		org["logo"] = b.cfg.AbsoluteURL(b.cfg.Logo)
	}
	if b.cfg.Email != "" || b.cfg.Phone != "" {
		org["contactPoint"] = map[string]any{
			"@type":       "ContactPoint",
			"email":       b.cfg.Email,
			"telephone":   b.cfg.Phone,
			"contactType": "customer service",
		}
	}
	if len(b.cfg.Social) > 0 {
		org["sameAs"] = b.cfg.Social
	}
	if n := len(b.cfg.Reviews); n > 0 {
		org["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": b.cfg.AverageRating(),
			"reviewCount": n,
			"bestRating":  5,
		}
	}
	b.add(org)
}

func (b *ldBuilder) website() {
	b.add(map[string]any{
		"@type":       "WebSite",
		"name":        b.cfg.Name,
		"url":         b.cfg.AbsoluteURL("/"),
		"description": b.cfg.Description,
	})
}

func (b *ldBuilder) article(a models.Article, path string) {
	doc := map[string]any{
		"@type":            "BlogPosting",
		"headline":         a.Title,
		"description":      a.Description,
		"datePublished":    a.Date.Format(time.RFC3339),
		"mainEntityOfPage": b.cfg.AbsoluteURL(path),
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  b.cfg.Name,
		},
	}
	if a.Author != "" {
		doc["author"] = map[string]any{"@type": "Person", "name": a.Author}
	}
	if a.Image != "" {
		doc["image"] = b.cfg.AbsoluteURL(a.Image)
	}
	if len(a.Tags) > 0 {
		doc["keywords"] = a.Tags
	}
	b.add(doc)
}

func (b *ldBuilder) products(products []models.Product) {
	for _, p := range products {
		doc := map[string]any{
			"@type":       "Product",
			"name":        p.Name,
			"description": p.Description,
			"sku":         p.Slug,
			"brand":       map[string]any{"@type": "Brand", "name": b.cfg.Name},
			"offers": map[string]any{
				"@type":         "Offer",
				"price":         p.Price,
				"priceCurrency": b.cfg.Currency,
				"availability":  "https://schema.org/InStock",
			},
		}
		if p.Image != "" {
			doc["image"] = b.cfg.AbsoluteURL(p.Image)
		}
		b.add(doc)
	}
}

func (b *ldBuilder) faq(items []models.FAQItem) {
	if len(items) == 0 {
		return
	}
	entities := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entities = append(entities, map[string]any{
			"@type": "Question",
			"name":  item.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  item.Answer,
			},
		})
	}
	b.add(map[string]any{
		"@type":      "FAQPage",
		"mainEntity": entities,
	})
}

func (b *ldBuilder) breadcrumbs(crumbs []crumb) {
	if len(crumbs) == 0 {
		return
	}
	items := make([]map[string]any, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     b.cfg.AbsoluteURL(c.Path),
		})
	}
	b.add(map[string]any{
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	})
}
