// Package auth implements credential checks for the Authorization header:
// Basic (base64 user:password), Bearer and bare Token schemes.
package auth

import (
	"encoding/base64"
	"errors"

	"github.com/tinyserv/tiny-server/core/http"
)

// ErrAuthentication is returned by Require when no registered credential
// matches the request. The server maps it to 401 Unauthorized.
var ErrAuthentication = errors.New("auth: authentication failed")

// Credential is one acceptable Authorization header value.
type Credential interface {
	// String returns the exact expected Authorization header value.
	String() string
}

// Basic is a username/password pair for the Basic scheme.
type Basic struct {
	Username string
	Password string
}

func (b Basic) String() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(b.Username+":"+b.Password))
}

// Token is a bare token credential ("Token <value>").
type Token struct {
	Value string
}

func (t Token) String() string {
	return "Token " + t.Value
}

// Bearer is a bearer token credential ("Bearer <value>").
type Bearer struct {
	Value string
}

func (b Bearer) String() string {
	return "Bearer " + b.Value
}

// Check reports whether the request's Authorization header matches any of
// the given credentials.
func Check(req *http.Request, credentials []Credential) bool {
	header, ok := req.Headers.Lookup(http.HeaderAuthorization)
	if !ok {
		return false
	}
	for _, credential := range credentials {
		if header == credential.String() {
			return true
		}
	}
	return false
}

// Require fails with ErrAuthentication unless the request carries one of
// the given credentials. Handlers call it at the top and return the error
// unchanged.
func Require(req *http.Request, credentials []Credential) error {
	if !Check(req, credentials) {
		return ErrAuthentication
	}
	return nil
}
