// Package uri implements the RFC 3986 operations the resolver needs: splitting a
// reference into components, recomposing a fragment-free location, and resolving a
// reference against a base (section 5.2).
package uri

import (
	"regexp"
	"strings"
)

// Appendix B of RFC 3986.
var splitRe = regexp.MustCompile(`^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?$`)

// Parts holds the components of a URI reference. The Has* flags distinguish an
// empty component from an undefined one ("a#" vs "a").
type Parts struct {
	Scheme       string
	Authority    string
	Path         string
	Query        string
	Fragment     string
	HasAuthority bool
	HasQuery     bool
	HasFragment  bool
}

// Split decomposes s. Every string matches the RFC grammar, so Split never fails.
func Split(s string) Parts {
	m := splitRe.FindStringSubmatch(s)
	if m == nil {
		return Parts{Path: s}
	}
	return Parts{
		Scheme:       strings.ToLower(m[2]),
		Authority:    m[4],
		HasAuthority: m[3] != "",
		Path:         m[5],
		Query:        m[7],
		HasQuery:     m[6] != "",
		Fragment:     m[9],
		HasFragment:  m[8] != "",
	}
}

// Location returns the fragment-free resource location of p.
func (p Parts) Location() string {
	return compose(p, false)
}

// String recomposes the full reference, fragment included.
func (p Parts) String() string {
	return compose(p, true)
}

func compose(p Parts, withFragment bool) string {
	var b strings.Builder
	if p.Scheme != "" {
		b.WriteString(p.Scheme)
		b.WriteByte(':')
	}
	if p.HasAuthority {
		b.WriteString("//")
		b.WriteString(p.Authority)
	}
	b.WriteString(p.Path)
	if p.HasQuery {
		b.WriteByte('?')
		b.WriteString(p.Query)
	}
	if withFragment && p.HasFragment {
		b.WriteByte('#')
		b.WriteString(p.Fragment)
	}
	return b.String()
}

// Compose builds a location from scheme, authority and path. An empty authority
// is emitted only for the file scheme, where "file:///x" is the canonical form.
func Compose(scheme, authority, path string) string {
	p := Parts{Scheme: strings.ToLower(scheme), Authority: authority, Path: path}
	p.HasAuthority = authority != "" || p.Scheme == "file"
	return p.Location()
}

// StripFragment returns s without its fragment.
func StripFragment(s string) string {
	return Split(s).Location()
}

// Join resolves ref against base. An empty ref returns base unchanged; a ref
// with its own scheme replaces base entirely; a fragment-only ref keeps base's
// path and query and replaces the fragment.
func Join(base, ref string) string {
	if ref == "" {
		return base
	}
	b := Split(base)
	r := Split(ref)
	var t Parts
	switch {
	case r.Scheme != "":
		t = r
		t.Path = removeDotSegments(r.Path)
	case r.HasAuthority:
		t = r
		t.Scheme = b.Scheme
		t.Path = removeDotSegments(r.Path)
	default:
		t.Scheme = b.Scheme
		t.Authority, t.HasAuthority = b.Authority, b.HasAuthority
		switch {
		case r.Path == "":
			t.Path = b.Path
			if r.HasQuery {
				t.Query, t.HasQuery = r.Query, true
			} else {
				t.Query, t.HasQuery = b.Query, b.HasQuery
			}
		case strings.HasPrefix(r.Path, "/"):
			t.Path = removeDotSegments(r.Path)
			t.Query, t.HasQuery = r.Query, r.HasQuery
		default:
			t.Path = removeDotSegments(merge(b, r.Path))
			t.Query, t.HasQuery = r.Query, r.HasQuery
		}
	}
	t.Fragment, t.HasFragment = r.Fragment, r.HasFragment
	return t.String()
}

// merge implements RFC 3986 section 5.2.3.
func merge(base Parts, ref string) string {
	if base.HasAuthority && base.Path == "" {
		return "/" + ref
	}
	i := strings.LastIndexByte(base.Path, '/')
	if i < 0 {
		return ref
	}
	return base.Path[:i+1] + ref
}

// removeDotSegments implements RFC 3986 section 5.2.4.
func removeDotSegments(in string) string {
	if !strings.Contains(in, ".") {
		return in
	}
	var out []string
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "/..":
			in = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}
