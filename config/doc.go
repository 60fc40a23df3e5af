// Package config provides configuration loading and validation for rjs2.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (RJS2_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with RJS2_ prefix:
//   - server.port → RJS2_SERVER_PORT
//   - content.root → RJS2_CONTENT_ROOT
//   - csrf.key_file → RJS2_CSRF_KEY_FILE
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev or prod, selects the log format
//   - Server: host, port, insecure mode and the TLS pair
//   - Content: content root, per-directory config file name and error templates
//   - Meta: server name and email handed to every template
//   - CSRF: cookie settings and the key source
//   - Manifest: optional persistence of the installed route table
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
package config
