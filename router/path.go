package router

import "strings"

// normalizePath implements spec §4.B's path normalization: must start with
// "/"; trailing "/" stripped except for root; doubled slashes collapsed.
// Grounded on bolt/core/router.go's splitPath, which performs the same
// collapsing while walking the string rather than via strings.Split.
//
// normalizePath is idempotent: normalizePath(normalizePath(p)) ==
// normalizePath(p) for any input (spec §8 round-trip property), since the
// output never contains a doubled slash or a non-root trailing slash to
// re-collapse on a second pass.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}

	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	out := b.String()
	if len(out) > 1 && out[len(out)-1] == '/' {
		out = out[:len(out)-1]
	}
	return out
}

// splitPath splits a normalized path into its non-empty segments. "/"
// yields an empty slice (the root has no segments).
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// isParamSegment reports whether a registered path segment is a `{name}`
// parameter segment, returning its name. Braces must be non-empty per
// spec §4.B ("name non-empty").
func isParamSegment(seg string) (name string, ok bool) {
	if len(seg) >= 3 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		inner := seg[1 : len(seg)-1]
		if inner != "" {
			return inner, true
		}
	}
	return "", false
}
