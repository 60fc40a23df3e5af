// Package autoload builds a route table from a content directory.
//
// The Loader walks the content source depth first. Every directory may hold
// an _alconfig.json file:
//
//	{
//	  "alias":   {"app2": "home"},
//	  "exclude": {"drafts": 0},
//	  "apps":    {"api1": "api1/app.hcl"},
//	  "mountConfig": {
//	    "form.html": {"pre": ["csrfProtection", "ejsLoadCsrfToken"],
//	                  "req": ["ejsRenderAndSendTemplate", "terminate"]}
//	  }
//	}
//
// Sub-directories are walked, files become GET routes at the path mirroring
// their location, and children listed in apps are handed to an application
// loaded by the AppLoader. Once the tree is mounted the CSRF failure handler
// and the not-found handler are installed.
//
// Loading happens once, before the server starts. Any configuration or
// filesystem error aborts the whole load.
package autoload
