package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Persister loads and saves the full record set.
type Persister interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
	// Describe names the backend and its location for /health.
	Describe() (storage, location string)
}

// LoadStore builds the startup store. A load failure is logged and yields an
// empty store; an empty store is seeded with the default products and saved.
func LoadStore(ctx context.Context, p Persister, log *zap.Logger) *Store {
	products, err := p.Load(ctx)
	if err != nil {
		log.Error("load products failed, starting empty", zap.Error(err))
		products = nil
	}

	if len(products) > 0 {
		log.Info("products loaded", zap.Int("count", len(products)))
		return NewStore(products)
	}

	st := NewSeededStore()
	if err := p.Save(ctx, st.List()); err != nil {
		log.Error("save seed products failed", zap.Error(err))
	} else {
		log.Info("seeded default products", zap.Int("count", st.Len()))
	}
	return st
}
