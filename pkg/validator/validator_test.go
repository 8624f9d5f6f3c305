package validator

import (
	"testing"
	"unicode/utf8"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"Name Surname <user@example.com>", true},
		{"not-an-email", false},
		{"", false},
		{"@example.com", false},
	}
	for _, tc := range cases {
		if got := ValidateEmail(tc.email); got != tc.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestValidateRating(t *testing.T) {
	for rating, want := range map[int]bool{0: false, 1: true, 3: true, 5: true, 6: false, -1: false} {
		if got := ValidateRating(rating); got != want {
			t.Errorf("ValidateRating(%d) = %v, want %v", rating, got, want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		errs     int
	}{
		{"valid", "Sup3rSecret", 0},
		{"too short", "Ab1", 1},
		{"no uppercase", "lowercase1", 1},
		{"no number", "NoDigitsHere", 1},
		{"only lowercase", "alllowercase", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidatePassword(tc.password)
			if len(errs) != tc.errs {
				t.Errorf("ValidatePassword(%q) returned %d errors, want %d: %v", tc.password, len(errs), tc.errs, errs)
			}
			if tc.errs > 0 && !errs.HasErrors() {
				t.Error("HasErrors() = false for failing password")
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 10); got != "hello" {
		t.Errorf("SanitizeString trim = %q", got)
	}
	if got := SanitizeString("abcdefghij", 4); got != "abcd" {
		t.Errorf("SanitizeString truncate = %q", got)
	}
}

func TestSanitizeStringRuneBoundary(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"héllo", 2, "h"},    // é is two bytes, cut backs up
		{"héllo", 3, "hé"},   // cut lands exactly after é
		{"日本語", 4, "日"},     // each rune is three bytes
		{"日本語", 6, "日本"},    // boundary cut keeps both runes intact
		{"abc", 3, "abc"},    // at the limit, untouched
	}
	for _, tc := range cases {
		got := SanitizeString(tc.in, tc.maxLen)
		if got != tc.want {
			t.Errorf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("SanitizeString(%q, %d) produced invalid UTF-8", tc.in, tc.maxLen)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  User@Example.COM "); got != "user@example.com" {
		t.Errorf("SanitizeEmail = %q", got)
	}
}
