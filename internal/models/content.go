package models

import "time"

// Article is a blog post rendered from Markdown.
type Article struct {
	// Slug is derived from the file name without extension.
	Slug string

	// Href is the site-relative URL of the article, without base path.
	Href string

	Title       string
	Description string
	Date        time.Time
	Author      string
	Tags        []string

	// Image is an optional cover image path.
	Image string

	// HTML is the rendered body.
	HTML string
}

// CaseStudy is an article about an operating franchise location, with the
// headline numbers shown on the case study cards.
type CaseStudy struct {
	Article

	Location       string
	Investment     float64
	MonthlyRevenue float64
	PaybackMonths  float64
}
