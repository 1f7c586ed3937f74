// Package content loads the site's copy and data tables.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed data/site.yaml
var siteYAML []byte

type Social struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Profile struct {
	Name        string   `yaml:"name"`
	ShortName   string   `yaml:"short_name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Roles       []string `yaml:"roles"`
	About       string   `yaml:"about"`
	Email       string   `yaml:"email"`
	Phone       string   `yaml:"phone"`
	Location    string   `yaml:"location"`
	Socials     []Social `yaml:"socials"`
}

type Tool struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Color    string `yaml:"color"`
}

// ToolGroup is the tools of one category.
type ToolGroup struct {
	Category string
	Tools    []Tool
}

type Certificate struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Issuer        string   `yaml:"issuer"`
	Date          string   `yaml:"date"`
	Description   string   `yaml:"description"`
	ImageURL      string   `yaml:"image_url"`
	CredentialURL string   `yaml:"credential_url"`
	Skills        []string `yaml:"skills"`
}

type Service struct {
	Title       string   `yaml:"title"`
	Route       string   `yaml:"route"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
}

type Project struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Category     string   `yaml:"category"`
	Featured     bool     `yaml:"featured"`
	Completed    string   `yaml:"completed"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	ImageURL     string   `yaml:"image_url"`
	Gallery      []string `yaml:"gallery"`
	DemoURL      string   `yaml:"demo_url"`
	GithubURL    string   `yaml:"github_url"`

	DescriptionHTML template.HTML `yaml:"-"`
}

// Slides is what the lightbox pages through: the gallery, or the cover
// image alone when there is none.
func (p Project) Slides() []string {
	if len(p.Gallery) > 0 {
		return p.Gallery
	}
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return nil
}

// SlideIndex is the slide the lightbox opens on for img, or 0 when img is
// not one of the slides.
func (p Project) SlideIndex(img string) int {
	for i, s := range p.Slides() {
		if s == img {
			return i
		}
	}
	return 0
}

// Site is everything the templates render.
type Site struct {
	Profile      Profile       `yaml:"profile"`
	Tools        []Tool        `yaml:"tools"`
	Certificates []Certificate `yaml:"certificates"`
	Services     []Service     `yaml:"services"`
	Projects     []Project     `yaml:"projects"`

	AboutHTML template.HTML `yaml:"-"`
}

// Load parses the embedded site data.
func Load() (*Site, error) {
	return Parse(siteYAML)
}

// Parse decodes site data and pre-renders its markdown fields.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing site content: %w", err)
	}

	var err error
	if s.AboutHTML, err = Markdown(s.Profile.About); err != nil {
		return nil, fmt.Errorf("rendering about: %w", err)
	}
	for i := range s.Projects {
		p := &s.Projects[i]
		if p.DescriptionHTML, err = Markdown(p.Description); err != nil {
			return nil, fmt.Errorf("rendering project %s: %w", p.ID, err)
		}
	}
	return &s, nil
}

// Markdown renders trusted site copy to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// ProjectsFor returns the projects of a category, featured first.
func (s *Site) ProjectsFor(category string) []Project {
	var featured, rest []Project
	for _, p := range s.Projects {
		if p.Category != category {
			continue
		}
		if p.Featured {
			featured = append(featured, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(featured, rest...)
}

// ToolCategories groups tools by category in first-seen order.
func (s *Site) ToolCategories() []ToolGroup {
	var groups []ToolGroup
	index := map[string]int{}
	for _, t := range s.Tools {
		i, ok := index[t.Category]
		if !ok {
			i = len(groups)
			index[t.Category] = i
			groups = append(groups, ToolGroup{Category: t.Category})
		}
		groups[i].Tools = append(groups[i].Tools, t)
	}
	return groups
}

// ServiceFor finds the service card linking to route.
func (s *Site) ServiceFor(route string) (Service, bool) {
	for _, svc := range s.Services {
		if svc.Route == route {
			return svc, true
		}
	}
	return Service{}, false
}
