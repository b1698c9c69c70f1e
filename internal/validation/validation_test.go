package validation

import (
	"strings"
	"testing"
)

func TestValidatePanelURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"https url", "https://panel.example.com", "https://panel.example.com", false},
		{"http url", "http://panel.example.com:8080", "http://panel.example.com:8080", false},
		{"trailing slash stripped", "https://panel.example.com/", "https://panel.example.com", false},
		{"surrounding whitespace", "  https://panel.example.com  ", "https://panel.example.com", false},
		{"empty", "", "", true},
		{"wrong scheme", "ftp://panel.example.com", "", true},
		{"no scheme", "panel.example.com", "", true},
		{"missing host", "https://", "", true},
		{"too long", "https://" + strings.Repeat("a", 300) + ".com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePanelURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePanelURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidatePanelURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"alice", false},
		{"user_42", false},
		{"ab", true},
		{strings.Repeat("a", 33), true},
		{"bad name", true},
		{"bad-name", true},
		{"ユーザー名前", true},
	}

	for _, tt := range tests {
		if err := ValidateUsername(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"alice@example.com", false},
		{"a@b.co", false},
		{"no-at-sign", true},
		{"@example.com", true},
		{"alice@", true},
		{"alice@nodot", true},
	}

	for _, tt := range tests {
		if err := ValidateEmail(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateMaxServers(t *testing.T) {
	tests := []struct {
		input   int
		wantErr bool
	}{
		{0, false},
		{10, false},
		{100, false},
		{-1, true},
		{101, true},
	}

	for _, tt := range tests {
		if err := ValidateMaxServers(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateMaxServers(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://panel.example.com", "panel.example.com"},
		{"https://panel.example.com:8080/path", "panel.example.com"},
		{"://bad url", ""},
	}

	for _, tt := range tests {
		if got := RedactURL(tt.input); got != tt.want {
			t.Errorf("RedactURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
