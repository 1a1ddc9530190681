package fifo_cache

type KeyValue[K comparable, V any] interface {
	Key() K
	Value() V
}

type keyValue[K comparable, V any] struct {
	key   K
	value V
}

func (a keyValue[K, V]) Key() K {
	return a.key
}

func (a keyValue[K, V]) Value() V {
	return a.value
}

// FIFOCache keeps at most size entries and evicts them in insertion order.
// It is not safe for concurrent use.
type FIFOCache[K comparable, V any] struct {
	index     int
	size      int
	insertSeq []*K
	cache     map[K]V
}

func New[K comparable, V any](size int) *FIFOCache[K, V] {
	if size < 1 {
		size = 1
	}
	return &FIFOCache[K, V]{
		size:      size,
		insertSeq: make([]*K, size),
		index:     0,
		cache:     make(map[K]V),
	}
}

func (a *FIFOCache[K, V]) Add(keyValue KeyValue[K, V]) {
	key := keyValue.Key()
	if a.exists(key) {
		return
	}
	a.cache[key] = keyValue.Value()
	a.replace(key)
}

func (a *FIFOCache[K, V]) Add2(key K, value V) {
	a.Add(keyValue[K, V]{
		key:   key,
		value: value,
	})
}

func (a *FIFOCache[K, V]) Get(key K) (value V, ok bool) {
	value, ok = a.cache[key]
	return
}

func (a *FIFOCache[K, V]) replace(key K) {
	curIdx := a.index % a.size
	evicted := a.insertSeq[curIdx]
	if evicted != nil {
		delete(a.cache, *evicted)
	} else {
		a.insertSeq[curIdx] = new(K)
	}
	*a.insertSeq[curIdx] = key
	a.index += 1
}

func (a *FIFOCache[K, V]) Exists(key K) bool {
	return a.exists(key)
}

func (a *FIFOCache[K, V]) exists(key K) bool {
	_, ok := a.cache[key]
	return ok
}

func (a *FIFOCache[K, V]) Len() int {
	return len(a.cache)
}

func (a *FIFOCache[K, V]) Cap() int {
	return a.size
}
