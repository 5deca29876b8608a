package server

import (
	"strings"
	"testing"
)

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"  ":     "",
		"api":    "/api",
		"/api":   "/api",
		"/api/":  "/api",
		"/api//": "/api",
		"a/b":    "/a/b",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSafeName(t *testing.T) {
	good := []string{"cam", "ai-vision", "qr_reader", "Model.AI", "a1"}
	for _, n := range good {
		if !isSafeName(n) {
			t.Fatalf("%q should be safe", n)
		}
	}
	bad := []string{"", "a b", "a/b", "a\\b", "..", "a..b", "café", strings.Repeat("x", 129)}
	for _, n := range bad {
		if isSafeName(n) {
			t.Fatalf("%q should be rejected", n)
		}
	}
}
