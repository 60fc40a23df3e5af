// Package http provides the HTTP plumbing shared by the rjs2 route loader.
//
// # Features
//
//   - Root router construction on chi (request ids, real ip, request logging,
//     panic recovery, optional CORS, HEAD for GET routes)
//   - Content negotiated error responses: HTML error pages, JSON ServerError
//     bodies or the same JSON as plain text
//   - Error page templates loaded from <dir>/<name>/<name>.html with an
//     optional <name>.css, falling back to an embedded "error" page
//   - Prefix stripping for delegated applications
//
// # Usage
//
//	pages := http.NewErrorPages(osfs.New("templates", osfs.WithBoundOS()))
//	router := http.NewRouter(http.RouterConfig{Logger: slog.Default()})
//
//	router.Get("/missing", func(w nethttp.ResponseWriter, r *nethttp.Request) {
//	    http.WriteProblem(w, r, pages, http.Problem{
//	        Code:    404,
//	        Title:   "Not Found",
//	        Message: "nothing here",
//	    })
//	})
//
// # Negotiation
//
// Negotiate follows the order HTML, JSON, text. A request without an Accept
// header gets HTML, "Accept: application/json" gets JSON and anything else
// that matches neither gets the JSON body with a text/plain content type.
package http
