package models

import "testing"

func TestFallbackName(t *testing.T) {
	cases := []struct {
		displayName, email, want string
	}{
		{"Ada Lovelace", "ada@example.com", "Ada Lovelace"},
		{"", "ada@example.com", "ada"},
		{"", "", "User"},
		{"", "@example.com", "User"},
	}
	for _, c := range cases {
		if got := FallbackName(c.displayName, c.email); got != c.want {
			t.Fatalf("FallbackName(%q, %q) = %q, want %q", c.displayName, c.email, got, c.want)
		}
	}
}
