package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/phenrril/sheetstore/internal/domain"
)

// ParseHTML lee la vista "pubhtml" de una planilla publicada. Google arma la
// tabla con una columna de números de fila en <th> y letras de columna en el
// <thead>; se toman sólo las <td> del cuerpo.
func ParseHTML(body []byte) (domain.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	table := doc.Find("table.waffle").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return domain.Table{}, fmt.Errorf("%w: la página no tiene tabla", domain.ErrMalformed)
	}

	var records [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.ParentsFiltered("thead").Length() > 0 {
			return
		}
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		rec := make([]string, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			rec = append(rec, strings.Join(strings.Fields(td.Text()), " "))
		})
		// la fila congelada y el relleno vienen como filas vacías antes del encabezado
		if len(records) == 0 && blank(rec) {
			return
		}
		records = append(records, trimTrailing(rec))
	})
	return tableFromRecords(records)
}

// trimTrailing quita celdas vacías al final; la grilla publicada suele traer
// más columnas que las usadas.
func trimTrailing(rec []string) []string {
	n := len(rec)
	for n > 0 && strings.TrimSpace(rec[n-1]) == "" {
		n--
	}
	return rec[:n]
}
