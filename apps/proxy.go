package apps

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// Proxy forwards every request to the descriptor's target URL.
func Proxy(d *Descriptor, env Env) (http.Handler, error) {
	if err := validate.Var(d.Target, "required,url"); err != nil {
		return nil, fmt.Errorf("proxy target %q: %w", d.Target, err)
	}

	target, err := url.Parse(d.Target)
	if err != nil {
		return nil, fmt.Errorf("proxy target %q: %w", d.Target, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	logger := env.Logger
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if logger != nil {
			logger.Warn("proxy request failed", "target", d.Target, "path", r.URL.Path, "error", err)
		}
		w.WriteHeader(http.StatusBadGateway)
	}

	return proxy, nil
}
