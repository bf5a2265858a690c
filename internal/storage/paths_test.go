package storage

import (
	"testing"
	"time"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name unchanged",
			input:    "Report Final.pdf",
			expected: "Report Final.pdf",
		},
		{
			name:     "strips path separators",
			input:    `..\..\evil/name.pdf`,
			expected: "....evilname.pdf",
		},
		{
			name:     "strips reserved characters",
			input:    `a:b*c?d"e<f>g|h.txt`,
			expected: "abcdefgh.txt",
		},
		{
			name:     "collapses whitespace runs",
			input:    "Report   Final\t2024.pdf",
			expected: "Report Final 2024.pdf",
		},
		{
			name:     "trims trailing dots and spaces",
			input:    "Report. .. ",
			expected: "Report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Report Final.pdf", "Report Final"},
		{"archive.tar.gz", "archive.tar"},
		{"noextension", "noextension"},
		{"  spaced  .docx", "spaced"},
	}

	for _, tt := range tests {
		if got := BaseName(tt.input); got != tt.expected {
			t.Errorf("BaseName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSeriesKey(t *testing.T) {
	// Same logical document, different casing, same key.
	if SeriesKey("Report Final.pdf") != SeriesKey("report final.PDF") {
		t.Error("expected case-insensitive series keys to match")
	}
	if SeriesKey("Report Final.pdf") == SeriesKey("Report Draft.pdf") {
		t.Error("expected different base names to produce different keys")
	}
}

func TestVersionDirName(t *testing.T) {
	at := time.Date(2026, 3, 7, 15, 30, 0, 0, time.UTC)
	if got := VersionDirName(3, at); got != "Versao 3 (07.03.2026)" {
		t.Errorf("VersionDirName = %q", got)
	}
}

func TestVersionLabel(t *testing.T) {
	at := time.Date(2026, 3, 7, 15, 30, 0, 0, time.UTC)
	if got := VersionLabel(12, at); got != "Versão 12 (07.03.2026)" {
		t.Errorf("VersionLabel = %q", got)
	}
}

func TestParseVersionDir(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"Versao 1 (01.02.2026)", 1},
		{"Versao 17 (31.12.2025)", 17},
		{"versao 2 (01.02.2026)", 0}, // case matters in the layout
		{"random directory", 0},
		{"Versao x (01.02.2026)", 0},
	}

	for _, tt := range tests {
		if got := parseVersionDir(tt.input); got != tt.expected {
			t.Errorf("parseVersionDir(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
