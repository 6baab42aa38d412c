package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/domain"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	htmlContentType = "text/html"
	maxBody         = 10 << 20
)

// Loader lee una planilla publicada ("Publicar en la web") como CSV, XLSX o
// la página pubhtml.
type Loader struct {
	url        string
	httpClient *http.Client
}

func NewLoader(sheetURL string, timeout time.Duration) *Loader {
	return &Loader{url: sheetURL, httpClient: &http.Client{Timeout: timeout}}
}

func (l *Loader) URL() string { return l.url }

// Fetch descarga la planilla y la convierte en productos, en el orden de las
// filas. Cualquier problema devuelve error; el caller decide cómo degradar.
func (l *Loader) Fetch(ctx context.Context) ([]domain.Product, error) {
	t, err := l.FetchTable(ctx)
	if err != nil {
		return nil, err
	}
	return ProductsFromTable(t)
}

// FetchTable descarga la planilla sin interpretar columnas.
func (l *Loader) FetchTable(ctx context.Context) (domain.Table, error) {
	if strings.TrimSpace(l.url) == "" {
		return domain.Table{}, errors.New("sheet url vacía")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return domain.Table{}, err
	}
	req.Header.Set("Accept", "text/csv, "+xlsxContentType+";q=0.9, */*;q=0.1")
	res, err := l.httpClient.Do(req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("sheet get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return domain.Table{}, fmt.Errorf("sheet status %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody+1))
	if err != nil {
		return domain.Table{}, fmt.Errorf("sheet read: %w", err)
	}
	// una planilla cortada daría una última fila con datos parciales
	if len(body) > maxBody {
		return domain.Table{}, fmt.Errorf("%w: la planilla supera %d bytes", domain.ErrMalformed, maxBody)
	}
	if isXLSX(l.url, res.Header.Get("Content-Type")) {
		log.Debug().Str("url", l.url).Int("bytes", len(body)).Msg("sheet xlsx")
		return ParseXLSX(body)
	}
	if isPubHTML(l.url, res.Header.Get("Content-Type")) {
		log.Debug().Str("url", l.url).Int("bytes", len(body)).Msg("sheet html")
		return ParseHTML(body)
	}
	return ParseCSV(body)
}

func isXLSX(rawURL, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), xlsxContentType) {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Query().Get("output"), "xlsx") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".xlsx")
}

// isPubHTML reconoce la vista /pubhtml, output=html o un text/html explícito.
func isPubHTML(rawURL, contentType string) bool {
	u, err := url.Parse(rawURL)
	if err == nil {
		if strings.HasSuffix(u.Path, "/pubhtml") || strings.EqualFold(u.Query().Get("output"), "html") {
			return true
		}
	}
	return strings.HasPrefix(strings.ToLower(contentType), htmlContentType)
}

// ParseCSV toma la primera fila como encabezado. Filas más largas que el
// encabezado invalidan la planilla; las más cortas se completan con vacío.
func ParseCSV(body []byte) (domain.Table, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	return tableFromRecords(records)
}

func tableFromRecords(records [][]string) (domain.Table, error) {
	if len(records) == 0 {
		return domain.Table{}, fmt.Errorf("%w: sin encabezado", domain.ErrMalformed)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := domain.Table{Columns: header, Rows: make([][]string, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return domain.Table{}, fmt.Errorf("%w: fila %d tiene %d campos, se esperaban %d", domain.ErrMalformed, i+1, len(rec), len(header))
		}
		if blank(rec) {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
