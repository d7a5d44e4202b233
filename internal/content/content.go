// Package content loads the blog and case study Markdown files.
//
// Every file starts with a YAML front matter block delimited by "---" lines,
// followed by the Markdown body:
//
//	---
//	title: Why fresh food
//	description: Short summary for cards and meta tags
//	date: 2024-03-15
//	author: PetVend team
//	tags: [nutrition, dogs]
//	---
//	Body in **Markdown**.
//
// Case studies add location, investment, monthlyRevenue and paybackMonths.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/petvend/site/internal/models"
)

// Subdirectories of the content root.
const (
	BlogDir        = "blog"
	CaseStudiesDir = "case-studies"
)

var (
	ErrNoFrontMatter = errors.New("missing front matter")
	ErrMissingTitle  = errors.New("front matter has no title")
	ErrBadDate       = errors.New("front matter date must be YYYY-MM-DD or RFC 3339")
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`

	// Case studies only.
	Location       string  `yaml:"location"`
	Investment     float64 `yaml:"investment"`
	MonthlyRevenue float64 `yaml:"monthlyRevenue"`
	PaybackMonths  float64 `yaml:"paybackMonths"`
}

// Library is everything loaded from one content root.
type Library struct {
	Articles    []models.Article
	CaseStudies []models.CaseStudy
}

// Loader parses content files. The zero value is not usable; call NewLoader.
type Loader struct {
	md goldmark.Markdown
}

// NewLoader returns a Loader rendering GitHub flavored Markdown.
func NewLoader() *Loader {
	return &Loader{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Load reads the blog and case-studies directories under root.
func (l *Loader) Load(root string) (*Library, error) {
	fsys := os.DirFS(root)

	articles, err := l.Articles(fsys, BlogDir)
	if err != nil {
		return nil, err
	}
	caseStudies, err := l.CaseStudies(fsys, CaseStudiesDir)
	if err != nil {
		return nil, err
	}
	return &Library{Articles: articles, CaseStudies: caseStudies}, nil
}

// LoadArticles reads every *.md file in dir as a blog article, newest first.
func LoadArticles(dir string) ([]models.Article, error) {
	return NewLoader().Articles(os.DirFS(dir), ".")
}

// LoadCaseStudies reads every *.md file in dir as a case study, newest first.
func LoadCaseStudies(dir string) ([]models.CaseStudy, error) {
	return NewLoader().CaseStudies(os.DirFS(dir), ".")
}

// Articles parses the *.md files in dir of fsys. A missing directory yields
// no articles.
func (l *Loader) Articles(fsys fs.FS, dir string) ([]models.Article, error) {
	var articles []models.Article
	err := l.walk(fsys, dir, func(slug string, fm frontMatter, html string, date time.Time) {
		articles = append(articles, article(fm, slug, "/blog/"+slug, html, date))
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return newerFirst(articles[i], articles[j])
	})
	return articles, nil
}

// CaseStudies parses the *.md files in dir of fsys. A missing directory
// yields no case studies.
func (l *Loader) CaseStudies(fsys fs.FS, dir string) ([]models.CaseStudy, error) {
	var studies []models.CaseStudy
	err := l.walk(fsys, dir, func(slug string, fm frontMatter, html string, date time.Time) {
		studies = append(studies, models.CaseStudy{
			Article:        article(fm, slug, "/case-studies/"+slug, html, date),
			Location:       fm.Location,
			Investment:     fm.Investment,
			MonthlyRevenue: fm.MonthlyRevenue,
			PaybackMonths:  fm.PaybackMonths,
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(studies, func(i, j int) bool {
		return newerFirst(studies[i].Article, studies[j].Article)
	})
	return studies, nil
}

func article(fm frontMatter, slug, href, html string, date time.Time) models.Article {
	return models.Article{
		Slug:        slug,
		Href:        href,
		Title:       fm.Title,
		Description: fm.Description,
		Date:        date,
		Author:      fm.Author,
		Tags:        fm.Tags,
		Image:       fm.Image,
		HTML:        html,
	}
}

// newerFirst orders by date descending, then slug for a stable listing.
func newerFirst(a, b models.Article) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.Slug < b.Slug
}

func (l *Loader) walk(fsys fs.FS, dir string, visit func(slug string, fm frontMatter, html string, date time.Time)) error {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read content directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".md" || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		fm, body, err := splitFrontMatter(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if strings.TrimSpace(fm.Title) == "" {
			return fmt.Errorf("%s: %w", name, ErrMissingTitle)
		}
		date, err := parseDate(fm.Date)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		var html bytes.Buffer
		if err := l.md.Convert(body, &html); err != nil {
			return fmt.Errorf("%s: failed to render markdown: %w", name, err)
		}

		visit(strings.TrimSuffix(name, ".md"), fm, html.String(), date)
	}
	return nil
}

func splitFrontMatter(data []byte) (frontMatter, []byte, error) {
	var fm frontMatter

	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return fm, nil, ErrNoFrontMatter
	}
	rest := data[len("---\n"):]

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return fm, nil, ErrNoFrontMatter
	}
	header := rest[:end]
	body := rest[end+len("\n---"):]
	// Drop the remainder of the closing delimiter line.
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}

	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return fm, body, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
}
