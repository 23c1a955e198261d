package reducer

// memo remembers results by key identity.
// Once it holds maxSize entries, the next store drops all of them first.
type memo[K, V any] struct {
	entries map[*K]V
	maxSize int
}

func newMemo[K, V any](maxSize int) *memo[K, V] {
	if maxSize <= 0 {
		panic("maxSize should be greater than 0")
	}
	return &memo[K, V]{
		entries: make(map[*K]V, maxSize),
		maxSize: maxSize,
	}
}

func (m *memo[K, V]) load(k *K) (V, bool) {
	if k == nil {
		var zero V
		return zero, false
	}
	v, ok := m.entries[k]
	return v, ok
}

// store ignores nil keys: there is no instance a host could replay.
func (m *memo[K, V]) store(k *K, v V) {
	if k == nil {
		return
	}
	if len(m.entries) >= m.maxSize {
		clear(m.entries)
	}
	m.entries[k] = v
}

func (m *memo[K, V]) len() int {
	return len(m.entries)
}
