package domain

import (
	"context"
	"time"
)

type CatalogSource interface {
	Fetch(ctx context.Context) ([]Product, error)
}

type TableSource interface {
	FetchTable(ctx context.Context) (Table, error)
}

type OrderSink interface {
	Send(ctx context.Context, o Order) error
}

type OrderNotifier interface {
	OrderSubmitted(ctx context.Context, o Order) error
}

type CatalogCache interface {
	Get(ctx context.Context) ([]Product, bool)
	Set(ctx context.Context, products []Product, ttl time.Duration)
}

// SessionStore guarda el estado de navegación de cada visitante.
type SessionStore interface {
	Get(ctx context.Context, id string) (*NavState, error)
	Save(ctx context.Context, id string, st *NavState) error
	Delete(ctx context.Context, id string) error
}
