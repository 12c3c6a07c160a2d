package catalog

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("product not found")

// Store is the in-memory, ordered record set. Every method is atomic with
// respect to the others; ids are allocated under the write lock.
type Store struct {
	mu sync.RWMutex
	s  []Product
}

func NewStore(products []Product) *Store {
	st := &Store{}
	st.Replace(products)
	return st
}

// NewSeededStore returns a store holding the two default products.
func NewSeededStore() *Store {
	return NewStore(seedProducts())
}

func (st *Store) Replace(products []Product) {
	cp := make([]Product, len(products))
	copy(cp, products)

	st.mu.Lock()
	st.s = cp
	st.mu.Unlock()
}

// List returns a copy of all records in insertion order.
func (st *Store) List() []Product {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]Product, len(st.s))
	copy(out, st.s)
	return out
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.s)
}

func (st *Store) MaxID() int64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return MaxID(st.s)
}

func (st *Store) Get(id string) (Product, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if i := st.indexOf(id); i >= 0 {
		return st.s[i], true
	}
	return Product{}, false
}

// Create appends a record built from patch under a freshly allocated id.
func (st *Store) Create(patch ProductPatch) Product {
	st.mu.Lock()
	defer st.mu.Unlock()

	p := patch.Product()
	p.ID = NextID(st.s)
	st.s = append(st.s, p)
	return p
}

// CreateBatch appends one record per patch, with consecutive ids in input
// order.
func (st *Store) CreateBatch(patches []ProductPatch) []Product {
	st.mu.Lock()
	defer st.mu.Unlock()

	ids := AllocateIDs(st.s, len(patches))
	out := make([]Product, len(patches))
	for i, pp := range patches {
		p := pp.Product()
		p.ID = ids[i]
		out[i] = p
	}

	st.s = append(st.s, out...)
	return out
}

// Update merges patch into the record with id. The id never changes.
func (st *Store) Update(id string, patch ProductPatch) (Product, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	i := st.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}

	p := patch.Apply(st.s[i])
	p.ID = st.s[i].ID
	st.s[i] = p
	return p, nil
}

// Delete removes the first record with id and returns it.
func (st *Store) Delete(id string) (Product, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	i := st.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}

	p := st.s[i]
	st.s = append(st.s[:i], st.s[i+1:]...)
	return p, nil
}

func (st *Store) indexOf(id string) int {
	for i := range st.s {
		if st.s[i].ID == id {
			return i
		}
	}
	return -1
}
