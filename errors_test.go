package schemaref_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/reoring/schemaref"
	"github.com/reoring/schemaref/i18n"
)

func TestError_IsMatchesCode(t *testing.T) {
	cases := map[string]error{
		schemaref.CodeResource:       schemaref.ErrResource,
		schemaref.CodeLookup:         schemaref.ErrLookup,
		schemaref.CodeInvalidPointer: schemaref.ErrInvalidPointer,
		schemaref.CodeConsistency:    schemaref.ErrConsistency,
	}
	for code, sentinel := range cases {
		err := fmt.Errorf("wrapped: %w", &schemaref.Error{Code: code})
		if !errors.Is(err, sentinel) {
			t.Fatalf("%s: errors.Is should match its sentinel", code)
		}
		for other, s := range cases {
			if other != code && errors.Is(err, s) {
				t.Fatalf("%s must not match %s", code, other)
			}
		}
		if !schemaref.IsCode(err, code) {
			t.Fatalf("IsCode(%s) = false", code)
		}
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	err := &schemaref.Error{Code: schemaref.CodeResource, URI: "file:///x.json", Cause: fs.ErrNotExist}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("cause should be reachable")
	}
	if e, ok := schemaref.AsError(err); !ok || e.URI != "file:///x.json" {
		t.Fatalf("AsError failed: %#v", e)
	}
	if _, ok := schemaref.AsError(nil); ok {
		t.Fatalf("AsError(nil) should be false")
	}
}

func TestError_Message(t *testing.T) {
	err := &schemaref.Error{Code: schemaref.CodeLookup, URI: "ftp://x", Reason: "unregistered_scheme", Message: "ftp"}
	if got := err.Error(); got != "lookup_error at ftp://x: unregistered scheme (ftp)" {
		t.Fatalf("message: %q", got)
	}

	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	if got := err.Error(); !strings.Contains(got, "スキーム") {
		t.Fatalf("expected localized message, got %q", got)
	}
}
