package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/rjavier441/rjs2"
)

//go:embed templates
var defaultTemplates embed.FS

var errNoRenderer = errors.New("no error page renderer")

// ErrorPage is the data passed to error page templates.
type ErrorPage struct {
	ErrorCode    int
	ErrorTitle   string
	ErrorMessage string
	// URL is the request URL that failed.
	URL string
	// TemplateCSS holds the contents of <name>.css next to the template.
	TemplateCSS template.CSS
}

// ErrorPageRenderer renders named error page templates to HTML.
type ErrorPageRenderer interface {
	Render(name string, data ErrorPage) (string, error)
}

type errorTemplate struct {
	tmpl *template.Template
	css  template.CSS
}

// ErrorPages loads templates named <name>/<name>.html from a template
// filesystem, with an optional <name>/<name>.css stylesheet. Templates missing
// from the filesystem fall back to the embedded defaults. Parsed templates are
// cached.
type ErrorPages struct {
	fs    billy.Filesystem
	mu    sync.Mutex
	cache map[string]*errorTemplate
}

// NewErrorPages creates a renderer over fs. A nil fs uses the embedded
// defaults only.
func NewErrorPages(fs billy.Filesystem) *ErrorPages {
	return &ErrorPages{fs: fs, cache: make(map[string]*errorTemplate)}
}

// Render executes the named template. Returns rjs2.ErrNotFound if no such
// template exists.
func (p *ErrorPages) Render(name string, data ErrorPage) (string, error) {
	t, err := p.lookup(name)
	if err != nil {
		return "", err
	}

	data.TemplateCSS = t.css
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (p *ErrorPages) lookup(name string) (*errorTemplate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.cache[name]; ok {
		return t, nil
	}

	html, css, err := p.read(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(html))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	t := &errorTemplate{tmpl: tmpl, css: template.CSS(css)}
	p.cache[name] = t
	return t, nil
}

func (p *ErrorPages) read(name string) ([]byte, []byte, error) {
	htmlPath := path.Join(name, name+".html")
	cssPath := path.Join(name, name+".css")

	if p.fs != nil {
		html, err := util.ReadFile(p.fs, htmlPath)
		if err == nil {
			css, cssErr := util.ReadFile(p.fs, cssPath)
			if cssErr != nil && !errors.Is(cssErr, os.ErrNotExist) {
				return nil, nil, fmt.Errorf("read stylesheet %s: %w", cssPath, cssErr)
			}
			return html, css, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("read template %s: %w", htmlPath, err)
		}
	}

	html, err := defaultTemplates.ReadFile(path.Join("templates", htmlPath))
	if err != nil {
		return nil, nil, fmt.Errorf("template %s: %w", name, rjs2.ErrNotFound)
	}
	css, _ := defaultTemplates.ReadFile(path.Join("templates", cssPath))
	return html, css, nil
}
