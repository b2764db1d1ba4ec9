package http

// fieldStorage is an ordered field-name -> values multimap shared by query
// parameters, form data and uploaded files.
type fieldStorage[T any] struct {
	order  []string
	values map[string][]T
}

func newFieldStorage[T any]() *fieldStorage[T] {
	return &fieldStorage[T]{values: make(map[string][]T)}
}

func (s *fieldStorage[T]) add(name string, value T) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = append(s.values[name], value)
}

func (s *fieldStorage[T]) get(name string) (T, bool) {
	if vs, ok := s.values[name]; ok && len(vs) > 0 {
		return vs[0], true
	}
	var zero T
	return zero, false
}

func (s *fieldStorage[T]) getList(name string) []T {
	return s.values[name]
}

func (s *fieldStorage[T]) has(name string) bool {
	_, ok := s.values[name]
	return ok
}

func (s *fieldStorage[T]) fields() []string {
	return s.order
}

func (s *fieldStorage[T]) len() int {
	return len(s.values)
}
