package pipeline

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path"
)

func (f *Factory) renderTemplate(file string) (Step, error) {
	if f.files == nil {
		return nil, fmt.Errorf("render %s: no template source", file)
	}

	data, err := f.files.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", file, err)
	}

	tmpl, err := template.New(path.Base(file)).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, err)
	}

	defaults := f.meta
	return func(w http.ResponseWriter, r *http.Request) error {
		bag := VarsFrom(r.Context())
		if bag == nil {
			bag = defaults.vars()
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, bag); err != nil {
			return fmt.Errorf("render %s: %w", file, err)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("send %s: %w", file, err)
		}
		return nil
	}, nil
}
