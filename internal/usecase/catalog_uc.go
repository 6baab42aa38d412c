package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/domain"
)

type CatalogUC struct {
	Source domain.CatalogSource
	// Cache es opcional; sólo se usa con TTL > 0.
	Cache domain.CatalogCache
	TTL   time.Duration
}

// Load nunca falla: si la planilla no responde o viene rota devuelve un
// catálogo vacío con Err seteado.
func (uc *CatalogUC) Load(ctx context.Context) domain.Catalog {
	now := time.Now()
	if uc.Cache != nil && uc.TTL > 0 {
		if products, ok := uc.Cache.Get(ctx); ok {
			return domain.Catalog{Products: products, LoadedAt: now}
		}
	}
	products, err := uc.Source.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo cargar el inventario")
		return domain.Catalog{Products: []domain.Product{}, LoadedAt: now, Err: err}
	}
	if uc.Cache != nil && uc.TTL > 0 {
		uc.Cache.Set(ctx, products, uc.TTL)
	}
	log.Debug().Int("products", len(products)).Msg("inventario cargado")
	return domain.Catalog{Products: products, LoadedAt: now}
}

// Featured elige un producto al azar para el banner. pick(n) debe devolver
// un valor en [0, n); nil usa math/rand.
func Featured(c domain.Catalog, pick func(n int) int) (*domain.Product, bool) {
	if c.Empty() {
		return nil, false
	}
	if pick == nil {
		pick = rand.Intn
	}
	i := pick(len(c.Products))
	if i < 0 || i >= len(c.Products) {
		i = 0
	}
	p := c.Products[i]
	return &p, true
}
