// Package report formats route manifests and snapshot history for the
// command line, either as aligned text or as indented JSON.
package report
