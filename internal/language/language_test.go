package language

import "testing"

func TestBase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"es", "es"},
		{"EN", "en"},
		{"spa", "es"},
		{"eng", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"es-MX", "es"},
		{"pt_BR", "pt"},
		{"Spanish", "es"},
		{"español", "es"},
		{"und", ""},
		{"UND", ""},
		{"und-US", ""},
		{"zxx", ""},
		{"mul", ""},
		{"", ""},
		{" ", ""},
		{"not a tag", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Base(tt.input); got != tt.expected {
				t.Errorf("Base(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	if !Match("spa", "es") {
		t.Fatal("spa should match es")
	}
	if !Match("eng", "en-US") {
		t.Fatal("eng should match en-US")
	}
	if Match("spa", "en") {
		t.Fatal("spa should not match en")
	}
	if Match("", "") {
		t.Fatal("empty tags should never match")
	}
	if Match("und", "und") {
		t.Fatal("undetermined tags should never match")
	}
	if Match("und", "en") || Match("en", "und") {
		t.Fatal("undetermined tag must not match english")
	}
}

func TestFromTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		expected string
	}{
		{"nil", nil, ""},
		{"lowercase key", map[string]string{"language": "SPA"}, "spa"},
		{"uppercase key", map[string]string{"LANGUAGE": "eng"}, "eng"},
		{"ietf key", map[string]string{"language_ietf": "es-MX"}, "es-mx"},
		{"blank value falls through", map[string]string{"language": " ", "lang": "fre"}, "fre"},
		{"null bytes stripped", map[string]string{"language": "eng\u0000"}, "eng"},
		{"no language", map[string]string{"title": "Main"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTags(tt.tags); got != tt.expected {
				t.Errorf("FromTags() = %q, want %q", got, tt.expected)
			}
		})
	}
}
