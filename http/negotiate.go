package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rjavier441/rjs2"
)

// Format is the representation chosen for an error response.
type Format int

const (
	FormatHTML Format = iota
	FormatJSON
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

// Negotiate picks HTML when the client accepts text/html, JSON when it
// accepts application/json and plain text otherwise. A request without an
// Accept header accepts anything and therefore gets HTML.
func Negotiate(r *http.Request) Format {
	accept := r.Header.Values("Accept")
	switch {
	case accepts(accept, "text/html"):
		return FormatHTML
	case accepts(accept, "application/json"):
		return FormatJSON
	default:
		return FormatText
	}
}

func accepts(header []string, mediaType string) bool {
	joined := strings.TrimSpace(strings.Join(header, ","))
	if joined == "" {
		return true
	}

	group, _, _ := strings.Cut(mediaType, "/")
	for _, field := range strings.Split(joined, ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(field))
		if err != nil {
			continue
		}
		if q, ok := params["q"]; ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v <= 0 {
				continue
			}
		}
		if mt == "*/*" || mt == mediaType || mt == group+"/*" {
			return true
		}
	}
	return false
}

// Problem is an error response shown to a client.
type Problem struct {
	Code    int
	Title   string
	Message string
	// Template is the error page used for HTML clients. Defaults to "error",
	// which is also used when Template does not exist.
	Template string
}

const fallbackErrorHTML = `<html>
<head><title>%d %s</title></head>
<body>
<center><h1>%d %s</h1></center>
<hr><center>rjs2</center>
</body>
</html>`

// WriteProblem writes p in the representation negotiated with the client.
// HTML bodies come from the "error" page of pages; when it cannot be rendered
// a minimal built-in page is sent instead.
func WriteProblem(w http.ResponseWriter, r *http.Request, pages ErrorPageRenderer, p Problem) {
	serverErr := NewServerError(p.Code, p.Message)

	switch Negotiate(r) {
	case FormatHTML:
		body, err := renderProblem(pages, p, r.URL.String())
		if err != nil {
			slog.Warn("failed to render error page", "code", p.Code, "err", err)
			body = strings.NewReplacer("%d", strconv.Itoa(p.Code), "%s", http.StatusText(p.Code)).Replace(fallbackErrorHTML)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(p.Code)
		_, _ = io.WriteString(w, body)
	case FormatJSON:
		_ = WriteJSON(w, p.Code, serverErr)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(p.Code)
		_, _ = io.WriteString(w, serverErr.String())
	}
}

func renderProblem(pages ErrorPageRenderer, p Problem, url string) (string, error) {
	if pages == nil {
		return "", errNoRenderer
	}

	data := ErrorPage{
		ErrorCode:    p.Code,
		ErrorTitle:   p.Title,
		ErrorMessage: p.Message,
		URL:          url,
	}
	if p.Template != "" && p.Template != "error" {
		body, err := pages.Render(p.Template, data)
		if !errors.Is(err, rjs2.ErrNotFound) {
			return body, err
		}
	}
	return pages.Render("error", data)
}
