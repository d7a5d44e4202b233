package site

import (
	"fmt"
	"html/template"
	"time"

	"github.com/petvend/site/internal/calculator"
	"github.com/petvend/site/internal/content"
	"github.com/petvend/site/internal/models"
)

// Template names. Each is a file under templates/ defining a "content" block.
const (
	tmplHome        = "home"
	tmplProducts    = "products"
	tmplFranchise   = "franchise"
	tmplNutrition   = "nutrition"
	tmplCost        = "cost"
	tmplBlog        = "blog"
	tmplArticle     = "article"
	tmplCaseStudies = "case-studies"
	tmplCaseStudy   = "case-study"
	tmplReviews     = "reviews"
	tmplContact     = "contact"
	tmplNotFound    = "not-found"
)

var templateNames = []string{
	tmplHome, tmplProducts, tmplFranchise, tmplNutrition, tmplCost, tmplBlog,
	tmplArticle, tmplCaseStudies, tmplCaseStudy, tmplReviews, tmplContact,
	tmplNotFound,
}

// NotFoundPath is rendered for unknown paths and exported as 404.html.
const NotFoundPath = "/404"

// Page is one renderable route.
type Page struct {
	// Path is site-relative and excludes the base path.
	Path     string
	Template string
	SEO      SEO

	// Sitemap fields.
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
	NoIndex    bool

	// Data is the template data for static pages. Calculator pages compute
	// theirs per request.
	Data any

	crumbs []crumb
}

type homeData struct {
	Products    []models.Product
	Scenarios   calculator.ScenarioComparison
	Articles    []models.Article
	CaseStudies []models.CaseStudy
	Reviews     []models.Review
}

type franchiseData struct {
	Form        calculator.InvestmentForm
	Inputs      calculator.InvestmentInputs
	Scenarios   calculator.ScenarioComparison
	Packages    []models.FranchisePackage
	CaseStudies []models.CaseStudy
	FAQ         []models.FAQItem
}

type nutritionData struct {
	Form      nutritionForm
	Submitted bool
	Error     string
	Result    *calculator.NutritionResult
}

type nutritionForm struct {
	PetType         string
	Weight          string
	Age             string
	ActivityLevel   string
	HealthCondition string
}

type costData struct {
	Weight string
	Error  string
	Result *calculator.CostCalculation
}

// buildPages lists every page of the site in sitemap order.
func (r *Renderer) buildPages(lib *content.Library) ([]Page, error) {
	cfg := r.cfg
	home := crumb{Name: "Home", Path: "/"}

	pages := []Page{
		{
			Path:     "/",
			Template: tmplHome,
			SEO: SEO{
				Title:       cfg.Name + " | " + cfg.Tagline,
				Description: cfg.Description,
			},
			ChangeFreq: "weekly",
			Priority:   1.0,
			Data: homeData{
				Products:    firstN(cfg.Products, 3),
				Scenarios:   calculator.CompareScenarios(calculator.DefaultInvestmentInputs()),
				Articles:    firstN(lib.Articles, 3),
				CaseStudies: firstN(lib.CaseStudies, 2),
				Reviews:     firstN(cfg.Reviews, 3),
			},
		},
		{
			Path:     "/products",
			Template: tmplProducts,
			SEO: SEO{
				Title:       "Fresh pet food | " + cfg.Name,
				Description: "Fresh, vet-approved meals for dogs and cats, available around the clock from our vending machines.",
			},
			ChangeFreq: "weekly",
			Priority:   0.9,
			Data:       cfg.Products,
			crumbs:     []crumb{home, {Name: "Products", Path: "/products"}},
		},
		{
			Path:     "/franchise",
			Template: tmplFranchise,
			SEO: SEO{
				Title:       "Franchise and investment calculator | " + cfg.Name,
				Description: "Estimate revenue, payback and ROI of a pet food vending location.",
			},
			ChangeFreq: "monthly",
			Priority:   0.9,
			crumbs:     []crumb{home, {Name: "Franchise", Path: "/franchise"}},
		},
		{
			Path:     "/calculators/nutrition",
			Template: tmplNutrition,
			SEO: SEO{
				Title:       "Pet nutrition calculator | " + cfg.Name,
				Description: "Daily calories, macronutrients and feeding schedule for your dog or cat.",
			},
			ChangeFreq: "monthly",
			Priority:   0.8,
			crumbs:     []crumb{home, {Name: "Nutrition calculator", Path: "/calculators/nutrition"}},
		},
		{
			Path:     "/calculators/cost",
			Template: tmplCost,
			SEO: SEO{
				Title:       "Fresh vs dry food cost calculator | " + cfg.Name,
				Description: "Compare what fresh and dry food cost per day, month and year for your pet.",
			},
			ChangeFreq: "monthly",
			Priority:   0.8,
			crumbs:     []crumb{home, {Name: "Cost calculator", Path: "/calculators/cost"}},
		},
		{
			Path:     "/blog",
			Template: tmplBlog,
			SEO: SEO{
				Title:       "Blog | " + cfg.Name,
				Description: "Pet nutrition advice and news from the " + cfg.Name + " team.",
			},
			LastMod:    latest(lib.Articles),
			ChangeFreq: "weekly",
			Priority:   0.7,
			Data:       lib.Articles,
			crumbs:     []crumb{home, {Name: "Blog", Path: "/blog"}},
		},
	}

	for _, a := range lib.Articles {
		pages = append(pages, Page{
			Path:     a.Href,
			Template: tmplArticle,
			SEO: SEO{
				Title:       a.Title + " | " + cfg.Name,
				Description: a.Description,
				OGType:      "article",
				Image:       a.Image,
			},
			LastMod:    a.Date,
			ChangeFreq: "yearly",
			Priority:   0.6,
			Data:       a,
			crumbs:     []crumb{home, {Name: "Blog", Path: "/blog"}, {Name: a.Title, Path: a.Href}},
		})
	}

	var studyArticles []models.Article
	for _, s := range lib.CaseStudies {
		studyArticles = append(studyArticles, s.Article)
	}
	pages = append(pages, Page{
		Path:     "/case-studies",
		Template: tmplCaseStudies,
		SEO: SEO{
			Title:       "Franchise case studies | " + cfg.Name,
			Description: "How existing " + cfg.Name + " locations perform.",
		},
		LastMod:    latest(studyArticles),
		ChangeFreq: "monthly",
		Priority:   0.7,
		Data:       lib.CaseStudies,
		crumbs:     []crumb{home, {Name: "Case studies", Path: "/case-studies"}},
	})
	for _, s := range lib.CaseStudies {
		pages = append(pages, Page{
			Path:     s.Href,
			Template: tmplCaseStudy,
			SEO: SEO{
				Title:       s.Title + " | " + cfg.Name,
				Description: s.Description,
				OGType:      "article",
				Image:       s.Image,
			},
			LastMod:    s.Date,
			ChangeFreq: "yearly",
			Priority:   0.6,
			Data:       s,
			crumbs:     []crumb{home, {Name: "Case studies", Path: "/case-studies"}, {Name: s.Title, Path: s.Href}},
		})
	}

	pages = append(pages,
		Page{
			Path:     "/reviews",
			Template: tmplReviews,
			SEO: SEO{
				Title:       "Reviews | " + cfg.Name,
				Description: "What pet owners and franchisees say about " + cfg.Name + ".",
			},
			ChangeFreq: "monthly",
			Priority:   0.5,
			Data:       cfg.Reviews,
			crumbs:     []crumb{home, {Name: "Reviews", Path: "/reviews"}},
		},
		Page{
			Path:     "/contact",
			Template: tmplContact,
			SEO: SEO{
				Title:       "Contact | " + cfg.Name,
				Description: "Get in touch with the " + cfg.Name + " team.",
			},
			ChangeFreq: "yearly",
			Priority:   0.5,
			Data:       cfg,
			crumbs:     []crumb{home, {Name: "Contact", Path: "/contact"}},
		},
		Page{
			Path:     NotFoundPath,
			Template: tmplNotFound,
			SEO: SEO{
				Title:       "Page not found | " + cfg.Name,
				Description: cfg.Description,
			},
			NoIndex: true,
		},
	)

	for i := range pages {
		p := &pages[i]
		p.SEO.Canonical = cfg.AbsoluteURL(p.Path)
		if p.SEO.OGType == "" {
			p.SEO.OGType = "website"
		}
		if p.SEO.Image == "" {
			p.SEO.Image = cfg.Logo
		}
		if p.SEO.Image != "" {
			p.SEO.Image = cfg.AbsoluteURL(p.SEO.Image)
		}
		blocks, err := structuredData(cfg, p)
		if err != nil {
			return nil, fmt.Errorf("structured data for %s: %w", p.Path, err)
		}
		p.SEO.JSONLD = blocks
	}
	return pages, nil
}

// structuredData builds the JSON-LD blocks of a page.
func structuredData(cfg *Config, p *Page) ([]template.JS, error) {
	b := &ldBuilder{cfg: cfg}
	switch p.Template {
	case tmplHome:
		b.organization()
		b.website()
	case tmplProducts:
		b.products(cfg.Products)
	case tmplFranchise:
		b.faq(cfg.FAQ)
	case tmplArticle:
		b.article(p.Data.(models.Article), p.Path)
	case tmplCaseStudy:
		b.article(p.Data.(models.CaseStudy).Article, p.Path)
	case tmplReviews:
		b.organization()
	}
	b.breadcrumbs(p.crumbs)
	return b.blocks, b.err
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func latest(articles []models.Article) time.Time {
	var t time.Time
	for _, a := range articles {
		if a.Date.After(t) {
			t = a.Date
		}
	}
	return t
}
