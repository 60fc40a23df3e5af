// Package rjs2 holds the domain types of the rjs2 web server runtime.
//
// rjs2 exposes a directory of files and sub-applications as HTTP endpoints.
// Routing is not hard-coded: it is compiled at startup from the filesystem
// layout plus an optional per-directory configuration file (_alconfig.json).
//
// # Key Components
//
//   - DirectoryConfig: the parsed per-directory configuration (alias, include,
//     exclude, apps, mountConfig)
//   - MountDecision: what the traversal decided to do with one filesystem entity
//   - Route / Manifest: the description of an installed route table
//   - Snapshot / ManifestRepo: persisted manifests (see the database package)
//
// # Directory configuration
//
// Given a tree
//
//	public/
//	|-- _alconfig.json        {"alias": {"app2": "home"}, "apps": {"api1": "api1/app.hcl"}}
//	|-- app1/index.html
//	|-- app2/
//	|   |-- _alconfig.json    {"exclude": {"dir2": 0, "test.html": 0}}
//	|   |-- index.html
//	|   |-- test.html
//	|   `-- dir2/img.jpg
//	`-- api1/app.hcl
//
// the loader installs GET /app1/index.html and GET /home/index.html, delegates
// everything under /api1 to the application described by api1/app.hcl, and
// answers 404 for anything else.
//
// The engine itself lives in the autoload package; request pipelines are built
// by the pipeline package and delegated applications are loaded by the apps
// package.
package rjs2
