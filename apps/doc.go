// Package apps loads the applications a directory delegates a child to.
//
// A module path names either a handler registered in Go with Loader.Handle,
// or a descriptor file declaring a built-in application:
//
//	# files/dav.hcl
//	kind      = "webdav"
//	root      = "shared"
//	read_only = true
//	realm     = "files"
//
//	user "alice" {
//	  bcrypt = "$2a$10$..."
//	}
//
// Descriptors may be written in HCL (.hcl), YAML (.yaml, .yml) or JSON
// (.json). Built-in kinds are webdav and proxy; others can be added with
// Loader.RegisterKind. Attributes a kind does not know about are passed to
// it in Descriptor.Options.
package apps
