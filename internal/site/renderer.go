package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/petvend/site/internal/calculator"
	"github.com/petvend/site/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and scripts served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// snapshot is the content and page list one render works against.
type snapshot struct {
	library *content.Library
	pages   []Page
	byPath  map[string]int
}

// Renderer renders site pages. It is safe for concurrent use; SetLibrary
// swaps the content atomically while requests are being served.
type Renderer struct {
	cfg       *Config
	templates map[string]*template.Template
	current   atomic.Pointer[snapshot]
	now       func() time.Time
}

// NewRenderer parses the embedded templates and builds the pages for lib.
func NewRenderer(cfg *Config, lib *content.Library) (*Renderer, error) {
	r := &Renderer{
		cfg:       cfg,
		templates: make(map[string]*template.Template, len(templateNames)),
		now:       time.Now,
	}

	base, err := template.New("layout.html").Funcs(r.funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	for _, name := range templateNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}

	if err := r.SetLibrary(lib); err != nil {
		return nil, err
	}
	return r, nil
}

// Config returns the site configuration.
func (r *Renderer) Config() *Config {
	return r.cfg
}

// SetLibrary replaces the blog and case study content.
func (r *Renderer) SetLibrary(lib *content.Library) error {
	if lib == nil {
		lib = &content.Library{}
	}
	pages, err := r.buildPages(lib)
	if err != nil {
		return err
	}
	snap := &snapshot{library: lib, pages: pages, byPath: make(map[string]int, len(pages))}
	for i, p := range pages {
		snap.byPath[p.Path] = i
	}
	r.current.Store(snap)
	return nil
}

// Library returns the content currently rendered.
func (r *Renderer) Library() *content.Library {
	return r.current.Load().library
}

// Pages returns every page of the site in sitemap order.
func (r *Renderer) Pages() []Page {
	return r.current.Load().pages
}

// Lookup finds the page for a site-relative path. A trailing slash is ignored.
func (r *Renderer) Lookup(path string) (Page, bool) {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	snap := r.current.Load()
	i, ok := snap.byPath[path]
	if !ok {
		return Page{}, false
	}
	return snap.pages[i], true
}

// NotFound returns the 404 page.
func (r *Renderer) NotFound() Page {
	p, _ := r.Lookup(NotFoundPath)
	return p
}

// Sitemap encodes sitemap.xml for the current pages.
func (r *Renderer) Sitemap() ([]byte, error) {
	return Sitemap(r.cfg, r.Pages())
}

type view struct {
	Site *Config
	Page Page
	Data any
	Year int
}

// Render writes the page as HTML. Calculator pages read their inputs from
// query; nil query renders their defaults.
func (r *Renderer) Render(w io.Writer, page Page, query url.Values) error {
	t, ok := r.templates[page.Template]
	if !ok {
		return fmt.Errorf("page %s: unknown template %q", page.Path, page.Template)
	}

	data := page.Data
	switch page.Template {
	case tmplFranchise:
		data = r.franchise(query)
	case tmplNutrition:
		data = nutrition(query)
	case tmplCost:
		data = cost(query)
	}

	// Render into a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", view{
		Site: r.cfg,
		Page: page,
		Data: data,
		Year: r.now().Year(),
	}); err != nil {
		return fmt.Errorf("failed to render %s: %w", page.Path, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) franchise(query url.Values) franchiseData {
	form := calculator.DefaultInvestmentInputs().Form()
	set := func(field *string, key string) {
		if query.Has(key) {
			*field = query.Get(key)
		}
	}
	set(&form.DailySales, "dailySales")
	set(&form.AveragePrice, "averagePrice")
	set(&form.MonthlyRent, "monthlyRent")
	set(&form.MonthlyUtilities, "monthlyUtilities")
	set(&form.InitialInvestment, "initialInvestment")
	set(&form.LocationFactor, "locationFactor")
	set(&form.CompetitionLevel, "competitionLevel")
	set(&form.SeasonalFactor, "seasonalFactor")

	in := form.Inputs()
	return franchiseData{
		Form:        form,
		Inputs:      in,
		Scenarios:   calculator.CompareScenarios(in),
		Packages:    r.cfg.Packages,
		CaseStudies: firstN(r.Library().CaseStudies, 3),
		FAQ:         r.cfg.FAQ,
	}
}

func nutrition(query url.Values) nutritionData {
	form := nutritionForm{
		PetType:         query.Get("petType"),
		Weight:          query.Get("weight"),
		Age:             query.Get("age"),
		ActivityLevel:   query.Get("activityLevel"),
		HealthCondition: query.Get("healthCondition"),
	}
	d := nutritionData{Form: form}
	if form == (nutritionForm{}) {
		return d
	}

	d.Submitted = true
	in := calculator.NutritionInputs{
		PetType:         calculator.PetType(form.PetType),
		Weight:          calculator.ParseNumberOrZero(form.Weight),
		Age:             calculator.AgeClass(form.Age),
		ActivityLevel:   calculator.ActivityLevel(form.ActivityLevel),
		HealthCondition: calculator.HealthCondition(form.HealthCondition),
	}
	if err := in.Validate(); err != nil {
		d.Error = calculator.ErrIncompleteProfile.Error()
		return d
	}
	res := calculator.CalculateNutrition(in)
	d.Result = &res
	return d
}

func cost(query url.Values) costData {
	d := costData{Weight: query.Get("weight")}
	if d.Weight == "" {
		return d
	}
	res, err := calculator.CalculateCost(calculator.ParseNumberOrZero(d.Weight))
	if err != nil {
		d.Error = calculator.ErrWeightOutOfRange.Error()
		return d
	}
	d.Result = &res
	return d
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"link": r.cfg.Link,
		"abs":  r.cfg.AbsoluteURL,
		"money": func(v float64) string {
			return formatNumber(v, 0) + " " + r.cfg.CurrencySymbol
		},
		"number": func(v float64) string {
			return formatNumber(v, 1)
		},
		"percent": func(v float64) string {
			return formatNumber(v, 1) + "%"
		},
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"isoDate": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"stars": func(n int) string {
			if n < 0 {
				n = 0
			}
			if n > 5 {
				n = 5
			}
			return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
		},
		"safeHTML": func(s string) template.HTML {
			// Only used for Markdown rendered by goldmark without raw HTML.
			return template.HTML(s)
		},
		"join": strings.Join,
		"dict": dict,
	}
}

// dict builds a map from alternating keys and values, for passing several
// values to a nested template.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

// formatNumber groups thousands and keeps at most one decimal, dropped for
// whole numbers. Non-finite values print as "n/a".
func formatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if decimals == 0 || v == math.Trunc(v) {
		return humanize.FormatFloat("#,###.", v)
	}
	return humanize.FormatFloat("#,###.#", v)
}
