package health

// roster is a name-keyed collection that remembers insertion order.
// Overwriting a name keeps its original position.
type roster[T any] struct {
	order []string
	items map[string]T
}

func newRoster[T any]() *roster[T] {
	return &roster[T]{items: make(map[string]T)}
}

// put stores v under name and reports whether an entry was replaced.
func (r *roster[T]) put(name string, v T) bool {
	_, exists := r.items[name]
	if !exists {
		r.order = append(r.order, name)
	}
	r.items[name] = v
	return exists
}

func (r *roster[T]) get(name string) (T, bool) {
	v, ok := r.items[name]
	return v, ok
}

func (r *roster[T]) remove(name string) bool {
	if _, ok := r.items[name]; !ok {
		return false
	}
	delete(r.items, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *roster[T]) list() []T {
	out := make([]T, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.items[n])
	}
	return out
}

func (r *roster[T]) len() int {
	return len(r.order)
}
