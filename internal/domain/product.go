package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product es una fila de la planilla publicada. Se recrea en cada carga.
type Product struct {
	Key      string          `json:"key"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	RowIndex int             `json:"row_index"`
}

// ProductKey deriva una clave estable a partir del nombre; el índice de fila
// cambia si alguien reordena la planilla entre cargas.
func ProductKey(name string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(name)))
	return hex.EncodeToString(sum[:])[:12]
}

type Catalog struct {
	Products []Product
	LoadedAt time.Time
	// Err queda seteado cuando la carga falló y el catálogo vino vacío.
	Err error
}

func (c Catalog) Empty() bool { return len(c.Products) == 0 }

// Find devuelve una copia del primer producto con esa clave.
func (c Catalog) Find(key string) (*Product, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	for i := range c.Products {
		if c.Products[i].Key == key {
			p := c.Products[i]
			return &p, true
		}
	}
	return nil, false
}

// Table es una planilla cruda (log de pedidos); columnas tal cual vienen.
type Table struct {
	Columns []string
	Rows    [][]string
	Err     error
}

func (t Table) Empty() bool { return len(t.Rows) == 0 }
