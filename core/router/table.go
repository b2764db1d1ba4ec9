package router

// Table is an ordered route table. Lookup order is registration order;
// overlapping templates resolve to whichever was added first.
type Table struct {
	routes []*Route
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{}
}

// Add appends a route.
func (t *Table) Add(route *Route) {
	t.routes = append(t.routes, route)
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Routes returns the registered routes in order.
func (t *Table) Routes() []*Route {
	return t.routes
}

// Match returns the first route accepting method and path, with the
// extracted path parameters.
func (t *Table) Match(method, path string) (*Route, map[string]string, bool) {
	for _, route := range t.routes {
		if params, ok := route.Matches(method, path); ok {
			return route, params, true
		}
	}
	return nil, nil, false
}
