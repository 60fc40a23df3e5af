package pipeline

import (
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/csrf"
)

// CSRFProvider supplies the CSRF validation middleware and the token of the
// current request.
type CSRFProvider interface {
	// Middleware returns the validation middleware. Repeated calls return the
	// same instance.
	Middleware() func(http.Handler) http.Handler
	// Token returns the masked token for r, or "" outside the middleware.
	Token(r *http.Request) string
	// Field returns a hidden form input carrying the token.
	Field(r *http.Request) template.HTML
	// OnFailure sets the handler answering requests that fail validation.
	OnFailure(h http.Handler)
}

// CSRFConfig configures GorillaCSRF.
type CSRFConfig struct {
	// Key is the 32 byte authentication key for the token cookie.
	Key        []byte
	CookieName string
	// MaxAge is the cookie lifetime in seconds.
	MaxAge int
	Secure bool
	// Plaintext marks every request as served over plain HTTP, which
	// disables the Referer check done for TLS requests.
	Plaintext      bool
	TrustedOrigins []string
}

// DefaultCookieName is the CSRF cookie used when none is configured.
const DefaultCookieName = "rjs2-csrf-token"

// GorillaCSRF is a CSRFProvider backed by gorilla/csrf.
type GorillaCSRF struct {
	cfg     CSRFConfig
	once    sync.Once
	mw      func(http.Handler) http.Handler
	failure atomic.Pointer[http.Handler]
}

// NewGorillaCSRF creates the provider. The middleware itself is built on
// first use.
func NewGorillaCSRF(cfg CSRFConfig) *GorillaCSRF {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &GorillaCSRF{cfg: cfg}
}

func (g *GorillaCSRF) Middleware() func(http.Handler) http.Handler {
	g.once.Do(func() {
		protect := csrf.Protect(g.cfg.Key,
			csrf.CookieName(g.cfg.CookieName),
			csrf.MaxAge(g.cfg.MaxAge),
			csrf.Secure(g.cfg.Secure),
			csrf.HttpOnly(true),
			csrf.SameSite(csrf.SameSiteStrictMode),
			csrf.Path("/"),
			csrf.TrustedOrigins(g.cfg.TrustedOrigins),
			csrf.ErrorHandler(http.HandlerFunc(g.fail)),
		)
		if !g.cfg.Plaintext {
			g.mw = protect
			return
		}
		g.mw = func(next http.Handler) http.Handler {
			h := protect(next)
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
			})
		}
	})
	return g.mw
}

func (g *GorillaCSRF) Token(r *http.Request) string {
	return csrf.Token(r)
}

func (g *GorillaCSRF) Field(r *http.Request) template.HTML {
	return csrf.TemplateField(r)
}

func (g *GorillaCSRF) OnFailure(h http.Handler) {
	g.failure.Store(&h)
}

func (g *GorillaCSRF) fail(w http.ResponseWriter, r *http.Request) {
	if h := g.failure.Load(); h != nil {
		(*h).ServeHTTP(w, r)
		return
	}
	msg := http.StatusText(http.StatusForbidden)
	if reason := csrf.FailureReason(r); reason != nil {
		msg += " - " + reason.Error()
	}
	http.Error(w, msg, http.StatusForbidden)
}

// FailureReason reports why a request failed CSRF validation.
func FailureReason(r *http.Request) error {
	return csrf.FailureReason(r)
}
