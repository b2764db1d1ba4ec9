package auth

import (
	"errors"
	"testing"

	"github.com/tinyserv/tiny-server/core/http"
)

func requestWithAuth(value string) *http.Request {
	h := http.NewHeaders()
	if value != "" {
		h.Add("Authorization", value)
	}
	return &http.Request{Method: "GET", Path: "/", Headers: h}
}

func TestBasicEncoding(t *testing.T) {
	// "user:pass" base64-encoded.
	got := Basic{Username: "user", Password: "pass"}.String()
	want := "Basic dXNlcjpwYXNz"
	if got != want {
		t.Errorf("Basic.String() = %q, want %q", got, want)
	}
}

func TestTokenSchemes(t *testing.T) {
	if got := (Token{Value: "abc"}).String(); got != "Token abc" {
		t.Errorf("Token.String() = %q", got)
	}
	if got := (Bearer{Value: "abc"}).String(); got != "Bearer abc" {
		t.Errorf("Bearer.String() = %q", got)
	}
}

func TestCheck(t *testing.T) {
	credentials := []Credential{
		Basic{Username: "user", Password: "pass"},
		Bearer{Value: "token123"},
	}

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"matching basic", "Basic dXNlcjpwYXNz", true},
		{"matching bearer", "Bearer token123", true},
		{"wrong password", "Basic dXNlcjp3cm9uZw==", false},
		{"wrong scheme", "Token token123", false},
		{"absent header", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(requestWithAuth(tt.header), credentials); got != tt.want {
				t.Errorf("Check = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	credentials := []Credential{Token{Value: "secret"}}

	if err := Require(requestWithAuth("Token secret"), credentials); err != nil {
		t.Errorf("Require with valid credential = %v", err)
	}
	if err := Require(requestWithAuth(""), credentials); !errors.Is(err, ErrAuthentication) {
		t.Errorf("Require without credential = %v, want ErrAuthentication", err)
	}
}
