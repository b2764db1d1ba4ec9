package router

import (
	"errors"
	"testing"

	"github.com/tinyserv/tiny-server/core/http"
)

func noopHandler(req *http.Request) (http.Responder, error) {
	return nil, nil
}

func TestRouteParameterExtraction(t *testing.T) {
	route, err := New("/item/<id>", []string{"GET"}, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	params, ok := route.Matches("GET", "/item/42")
	if !ok {
		t.Fatalf("no match for /item/42")
	}
	if params["id"] != "42" {
		t.Errorf("params = %v, want id=42", params)
	}

	if _, ok := route.Matches("GET", "/item/42/extra"); ok {
		t.Errorf("matched a longer path")
	}
	if _, ok := route.Matches("GET", "/item/"); ok {
		t.Errorf("matched an empty parameter segment")
	}
}

func TestRouteMultipleParameters(t *testing.T) {
	route, err := New("/users/<user>/posts/<post>", []string{"GET"}, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	params, ok := route.Matches("GET", "/users/ada/posts/17")
	if !ok {
		t.Fatalf("no match")
	}
	if params["user"] != "ada" || params["post"] != "17" {
		t.Errorf("params = %v", params)
	}
}

func TestRouteWildcards(t *testing.T) {
	single, err := New("/static/...", []string{"GET"}, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := single.Matches("GET", "/static/app.css"); !ok {
		t.Errorf("single-segment wildcard did not match one segment")
	}
	if _, ok := single.Matches("GET", "/static/css/app.css"); ok {
		t.Errorf("single-segment wildcard matched two segments")
	}

	multi, err := New("/assets/....", []string{"GET"}, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := multi.Matches("GET", "/assets/a.js"); !ok {
		t.Errorf("multi-segment wildcard did not match one segment")
	}
	if _, ok := multi.Matches("GET", "/assets/js/vendor/a.js"); !ok {
		t.Errorf("multi-segment wildcard did not match nested segments")
	}
	if _, ok := multi.Matches("GET", "/assets/"); ok {
		t.Errorf("wildcard matched an empty remainder")
	}
}

func TestRouteMethodSet(t *testing.T) {
	route, err := New("/submit", []string{"post", "PUT"}, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := route.Matches("POST", "/submit"); !ok {
		t.Errorf("lower-case registered method did not match")
	}
	if _, ok := route.Matches("put", "/submit"); !ok {
		t.Errorf("lower-case request method did not match")
	}
	if _, ok := route.Matches("GET", "/submit"); ok {
		t.Errorf("unregistered method matched")
	}
}

func TestRouteDefaultMethod(t *testing.T) {
	route, err := New("/page", nil, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := route.Matches("GET", "/page"); !ok {
		t.Errorf("empty method list must default to GET")
	}
}

func TestRouteAppendSlash(t *testing.T) {
	route, err := New("/dir", []string{"GET"}, true, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := route.Matches("GET", "/dir"); !ok {
		t.Errorf("bare path did not match")
	}
	if _, ok := route.Matches("GET", "/dir/"); !ok {
		t.Errorf("slashed path did not match with append-slash")
	}

	strict, _ := New("/dir", []string{"GET"}, false, noopHandler)
	if _, ok := strict.Matches("GET", "/dir/"); ok {
		t.Errorf("slashed path matched without append-slash")
	}
}

func TestRouteLiteralEscaping(t *testing.T) {
	route, err := New("/v1.0/data", []string{"GET"}, false, noopHandler)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := route.Matches("GET", "/v1.0/data"); !ok {
		t.Errorf("literal path did not match")
	}
	if _, ok := route.Matches("GET", "/v1x0/data"); ok {
		t.Errorf("dot in literal segment was treated as a regexp metacharacter")
	}
}

func TestRouteValidation(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		appendSlash bool
	}{
		{"no leading slash", "item/<id>", false},
		{"unnamed parameter", "/item/<>", false},
		{"parameter inside segment", "/item/x<id>", false},
		{"empty segment", "/a//b", false},
		{"trailing slash with append", "/dir/", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.template, []string{"GET"}, tt.appendSlash, noopHandler)
			if !errors.Is(err, ErrMalformedRoute) {
				t.Errorf("New(%q) = %v, want ErrMalformedRoute", tt.template, err)
			}
		})
	}
}

func TestTableFirstMatchWins(t *testing.T) {
	table := NewTable()
	first, _ := New("/item/special", []string{"GET"}, false, noopHandler)
	second, _ := New("/item/<id>", []string{"GET"}, false, noopHandler)
	table.Add(first)
	table.Add(second)

	route, params, ok := table.Match("GET", "/item/special")
	if !ok || route != first {
		t.Errorf("matched %v, want the earlier literal route", route)
	}
	if len(params) != 0 {
		t.Errorf("unexpected params on literal match: %v", params)
	}

	route, params, ok = table.Match("GET", "/item/42")
	if !ok || route != second {
		t.Fatalf("parameterized route not reached")
	}
	if params["id"] != "42" {
		t.Errorf("params = %v", params)
	}

	if _, _, ok := table.Match("DELETE", "/item/42"); ok {
		t.Errorf("method mismatch matched")
	}
}
