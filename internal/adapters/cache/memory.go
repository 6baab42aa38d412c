package cache

import (
	"context"
	"sync"
	"time"

	"github.com/phenrril/sheetstore/internal/domain"
)

// Memory guarda el último catálogo bueno dentro del proceso.
type Memory struct {
	mu       sync.RWMutex
	products []domain.Product
	expires  time.Time
	now      func() time.Time
}

func NewMemory() *Memory { return &Memory{now: time.Now} }

func (m *Memory) Get(_ context.Context) ([]domain.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.products == nil || !m.now().Before(m.expires) {
		return nil, false
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, true
}

func (m *Memory) Set(_ context.Context, products []domain.Product, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	m.mu.Lock()
	m.products = cp
	m.expires = m.now().Add(ttl)
	m.mu.Unlock()
}
