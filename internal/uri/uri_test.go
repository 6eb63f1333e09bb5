package uri

import "testing"

func TestSplit_Components(t *testing.T) {
	p := Split("HTTP://example.com/a/b.json?x=1#/definitions/c")
	if p.Scheme != "http" || p.Authority != "example.com" || p.Path != "/a/b.json" {
		t.Fatalf("unexpected split: %+v", p)
	}
	if !p.HasQuery || p.Query != "x=1" {
		t.Fatalf("query not split: %+v", p)
	}
	if !p.HasFragment || p.Fragment != "/definitions/c" {
		t.Fatalf("fragment not split: %+v", p)
	}
	if got := p.Location(); got != "http://example.com/a/b.json?x=1" {
		t.Fatalf("location: %q", got)
	}
}

func TestSplit_EmptyVersusUndefined(t *testing.T) {
	a := Split("root#")
	if !a.HasFragment || a.Fragment != "" || a.Location() != "root" {
		t.Fatalf("root#: %+v", a)
	}
	b := Split("root")
	if b.HasFragment {
		t.Fatalf("root should have no fragment")
	}
	f := Split("file:///tmp/s.json")
	if !f.HasAuthority || f.Authority != "" || f.Location() != "file:///tmp/s.json" {
		t.Fatalf("file uri: %+v", f)
	}
}

func TestCompose(t *testing.T) {
	cases := []struct{ scheme, auth, path, want string }{
		{"", "", "root", "root"},
		{"http", "h", "/x.json", "http://h/x.json"},
		{"file", "", "/tmp/x.json", "file:///tmp/x.json"},
	}
	for _, c := range cases {
		if got := Compose(c.scheme, c.auth, c.path); got != c.want {
			t.Fatalf("Compose(%q,%q,%q) = %q, want %q", c.scheme, c.auth, c.path, got, c.want)
		}
	}
}

func TestJoin(t *testing.T) {
	cases := []struct{ base, ref, want string }{
		{"http://a/b/c/d;p?q", "", "http://a/b/c/d;p?q"},
		{"http://a/b/c/d;p?q", "g", "http://a/b/c/g"},
		{"http://a/b/c/d;p?q", "./g", "http://a/b/c/g"},
		{"http://a/b/c/d;p?q", "../g", "http://a/b/g"},
		{"http://a/b/c/d;p?q", "/g", "http://a/g"},
		{"http://a/b/c/d;p?q", "//g", "http://g"},
		{"http://a/b/c/d;p?q", "#s", "http://a/b/c/d;p?q#s"},
		{"http://a/b/c/d;p?q", "?y", "http://a/b/c/d;p?y"},
		{"http://a/b/c/d;p?q", "../../../g", "http://a/g"},
		{"http://a/b/c/d;p?q", "ftp://x/y", "ftp://x/y"},
		{"#", "#/definitions/x", "#/definitions/x"},
		{"#", "other.json#/a", "other.json#/a"},
		{"root", "#/type", "root#/type"},
		{"file:///tmp/schemas/root.json", "defs.json#/a", "file:///tmp/schemas/defs.json#/a"},
		{"http://x/a.json#/foo", "#bar", "http://x/a.json#bar"},
	}
	for _, c := range cases {
		if got := Join(c.base, c.ref); got != c.want {
			t.Fatalf("Join(%q, %q) = %q, want %q", c.base, c.ref, got, c.want)
		}
	}
}

func TestStripFragment(t *testing.T) {
	if got := StripFragment("http://h/x.json#/a/b"); got != "http://h/x.json" {
		t.Fatalf("got %q", got)
	}
}
