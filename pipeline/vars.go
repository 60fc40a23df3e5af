package pipeline

import (
	"context"
	"maps"
	"net/http"
)

// Vars is the request scoped bag of template variables filled by pre stages
// and read by the render stage.
type Vars map[string]any

type varsKey struct{}

// WithVars returns a copy of ctx carrying v.
func WithVars(ctx context.Context, v Vars) context.Context {
	return context.WithValue(ctx, varsKey{}, v)
}

// VarsFrom returns the bag carried by ctx, or nil.
func VarsFrom(ctx context.Context) Vars {
	v, _ := ctx.Value(varsKey{}).(Vars)
	return v
}

// Meta holds the server wide defaults every bag starts with.
type Meta struct {
	Title string
	Email string
}

func (m Meta) vars() Vars {
	return Vars{"title": m.Title, "email": m.Email}
}

// varsMiddleware attaches a fresh bag seeded with defaults to every request.
func varsMiddleware(defaults Vars) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bag := maps.Clone(defaults)
			if bag == nil {
				bag = Vars{}
			}
			next.ServeHTTP(w, r.WithContext(WithVars(r.Context(), bag)))
		})
	}
}
