package google

import (
	"context"
	"strings"
	"testing"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), "spreadsheet-id", "History", Credentials{})
	if err == nil {
		t.Fatal("New() with empty credentials succeeded, want error")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("err = %v, want missing credentials", err)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "History", Credentials{JSON: "{}"})
	if err == nil || !strings.Contains(err.Error(), "missing spreadsheet ID") {
		t.Errorf("err = %v, want missing spreadsheet ID", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		name string
		base string
		year int
		want string
	}{
		{"plain name gets prefixed", "History", 2024, "2024 History"},
		{"already prefixed stays", "2023 History", 2024, "2023 History"},
		{"non-year prefix gets prefixed", "abcd History", 2024, "2024 abcd History"},
		{"empty stays empty", "", 2024, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}
