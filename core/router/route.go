// Package router matches request method/path pairs against registered
// route templates. Templates support named parameters ("/device/<id>"),
// single-segment wildcards ("/static/...") and multi-segment wildcards
// ("/static/...."). Routes are tried in registration order and the first
// match wins.
package router

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tinyserv/tiny-server/core/http"
)

// Handler produces a response for a matched request. Returning a nil
// Responder with a nil error means the handler already dealt with the
// connection (or deliberately produced no response).
type Handler func(req *http.Request) (http.Responder, error)

// ErrMalformedRoute is returned by New for invalid templates.
var ErrMalformedRoute = errors.New("router: malformed route template")

// Route is a compiled route template bound to a method set and handler.
type Route struct {
	// Path is the original template string.
	Path string
	// Methods is the set of accepted methods, upper-cased.
	Methods map[string]bool
	// AppendSlash also matches the template with a trailing slash added.
	AppendSlash bool
	// Handler is invoked on match.
	Handler Handler

	pattern    *regexp.Regexp
	paramNames []string
}

// New compiles a route template. Validation failures return a wrapped
// ErrMalformedRoute:
//   - template must begin with "/"
//   - "<>" parameters must carry a name
//   - parameters and wildcards must span a whole segment
//   - empty segments ("//") are rejected
//   - AppendSlash cannot combine with an explicit trailing slash
func New(template string, methods []string, appendSlash bool, handler Handler) (*Route, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, fmt.Errorf("%w: %q does not start with /", ErrMalformedRoute, template)
	}
	if appendSlash && strings.HasSuffix(template, "/") {
		return nil, fmt.Errorf("%w: %q has a trailing slash with append-slash set", ErrMalformedRoute, template)
	}
	if strings.Contains(template, "//") {
		return nil, fmt.Errorf("%w: %q contains an empty segment", ErrMalformedRoute, template)
	}

	pattern, params, err := compile(template, appendSlash)
	if err != nil {
		return nil, err
	}

	methodSet := make(map[string]bool, len(methods))
	if len(methods) == 0 {
		methodSet["GET"] = true
	}
	for _, m := range methods {
		methodSet[strings.ToUpper(m)] = true
	}

	return &Route{
		Path:        template,
		Methods:     methodSet,
		AppendSlash: appendSlash,
		Handler:     handler,
		pattern:     pattern,
		paramNames:  params,
	}, nil
}

// compile translates the template to an anchored regexp. Each segment is
// either a literal (quoted), a named parameter capture, or a wildcard.
func compile(template string, appendSlash bool) (*regexp.Regexp, []string, error) {
	var params []string
	var b strings.Builder
	b.WriteString("^")

	segments := strings.Split(template[1:], "/")
	for _, segment := range segments {
		b.WriteString("/")
		switch {
		case segment == "....":
			b.WriteString(".+")

		case segment == "...":
			b.WriteString("[^/]+")

		case strings.HasPrefix(segment, "<") && strings.HasSuffix(segment, ">"):
			name := segment[1 : len(segment)-1]
			if name == "" {
				return nil, nil, fmt.Errorf("%w: %q has an unnamed parameter", ErrMalformedRoute, template)
			}
			params = append(params, name)
			fmt.Fprintf(&b, "(?P<%s>[^/]+)", regexp.QuoteMeta(name))

		case strings.Contains(segment, "<") || strings.Contains(segment, ">"):
			return nil, nil, fmt.Errorf("%w: parameter in %q must span a whole segment", ErrMalformedRoute, template)

		default:
			b.WriteString(regexp.QuoteMeta(segment))
		}
	}

	if appendSlash {
		b.WriteString("/?")
	}
	b.WriteString("$")

	pattern, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q: %v", ErrMalformedRoute, template, err)
	}
	return pattern, params, nil
}

// Matches reports whether method and path match this route, and on a match
// returns the extracted path parameters.
func (r *Route) Matches(method, path string) (map[string]string, bool) {
	if !r.Methods[strings.ToUpper(method)] {
		return nil, false
	}
	m := r.pattern.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(r.paramNames))
	for i, name := range r.paramNames {
		params[name] = m[i+1]
	}
	return params, true
}

func (r *Route) String() string {
	methods := make([]string, 0, len(r.Methods))
	for m := range r.Methods {
		methods = append(methods, m)
	}
	return fmt.Sprintf("%v %s", methods, r.Path)
}
