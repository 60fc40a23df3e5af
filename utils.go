package rjs2

import (
	"path"
	"strings"
)

// TrimSlashes removes every leading and trailing forward slash.
func TrimSlashes(s string) string {
	return strings.Trim(s, "/")
}

// IsEntityName reports whether name, once outer slashes are trimmed, names a
// single child of a directory: not empty, not "." or "..", no inner slash.
func IsEntityName(name string) bool {
	name = TrimSlashes(name)
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.Contains(name, "/")
}

// JoinMountPath joins URL path segments into an absolute mount path. The
// result starts with a slash and has no doubled or trailing slashes. Dot
// segments are kept as they are: mount paths are literal route patterns.
func JoinMountPath(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		for _, seg := range strings.Split(part, "/") {
			if seg == "" {
				continue
			}
			b.WriteByte('/')
			b.WriteString(seg)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// JoinSourcePath joins a directory and an entity name inside a content source.
func JoinSourcePath(dir, name string) string {
	return path.Join("/", dir, name)
}

// HasDotSegment reports whether any segment of a slash separated path starts
// with a dot (hidden files, "." and "..").
func HasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
