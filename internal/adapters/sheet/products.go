package sheet

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phenrril/sheetstore/internal/domain"
)

const (
	ColName     = "name"
	ColPrice    = "price"
	ColImageURL = "image_url"
)

// ProductsFromTable exige las columnas name, price e image_url (sin importar
// mayúsculas); el resto se ignora.
func ProductsFromTable(t domain.Table) ([]domain.Product, error) {
	idx := map[string]int{}
	for i, c := range t.Columns {
		k := strings.ToLower(strings.TrimSpace(c))
		if _, dup := idx[k]; !dup {
			idx[k] = i
		}
	}
	for _, col := range []string{ColName, ColPrice, ColImageURL} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, col)
		}
	}

	out := make([]domain.Product, 0, len(t.Rows))
	for i, row := range t.Rows {
		name := strings.TrimSpace(cell(row, idx[ColName]))
		rawPrice := strings.TrimSpace(cell(row, idx[ColPrice]))
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: fila %d precio %q", domain.ErrMalformed, i+1, rawPrice)
		}
		out = append(out, domain.Product{
			Key:      domain.ProductKey(name),
			Name:     name,
			Price:    price,
			ImageURL: strings.TrimSpace(cell(row, idx[ColImageURL])),
			RowIndex: len(out),
		})
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
