package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/sheetstore/internal/domain"
)

// ParseXLSX lee la primera hoja del libro.
func ParseXLSX(body []byte) (domain.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Table{}, fmt.Errorf("%w: libro sin hojas", domain.ErrMalformed)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	return tableFromRecords(rows)
}

// WriteXLSX exporta el catálogo con las mismas columnas que la planilla de origen.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []any{ColName, ColPrice, ColImageURL}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, p := range products {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.Name, priceCell(p.Price), p.ImageURL}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// priceCell escribe número sólo si el float representa el precio exacto; si
// no, va como texto tal cual está en la planilla.
func priceCell(d decimal.Decimal) any {
	if f, exact := d.Float64(); exact {
		return f
	}
	return d.String()
}
