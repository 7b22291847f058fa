package seo

import "testing"

func TestOpenGraphLocale(t *testing.T) {
	if got := OpenGraphLocale("en"); got != "en_US" {
		t.Errorf("OpenGraphLocale(en) = %q, want en_US", got)
	}
	if got := OpenGraphLocale("heb"); got != "he_IL" {
		t.Errorf("OpenGraphLocale(heb) = %q, want he_IL", got)
	}
}

func TestHreflangCode(t *testing.T) {
	if got := HreflangCode("en"); got != "en" {
		t.Errorf("HreflangCode(en) = %q", got)
	}
	if got := HreflangCode("heb"); got != "he" {
		t.Errorf("HreflangCode(heb) = %q", got)
	}
}

func TestIsSupportedLocale(t *testing.T) {
	for _, l := range []string{"en", "heb"} {
		if !IsSupportedLocale(l) {
			t.Errorf("%q should be supported", l)
		}
	}
	for _, l := range []string{"he", "EN", "fr", ""} {
		if IsSupportedLocale(l) {
			t.Errorf("%q should not be supported", l)
		}
	}
}

func TestNegotiateLocale(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"he-IL,he;q=0.9,en;q=0.8", "heb"},
		{"en-GB,en;q=0.9", "en"},
		{"fr-FR", "en"},
		{"", "en"},
		{";;;invalid", "en"},
	}

	for _, tt := range tests {
		if got := NegotiateLocale(tt.header); got != tt.want {
			t.Errorf("NegotiateLocale(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
