package theme

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phenrril/sheetstore/internal/domain"
)

//go:embed themes.yaml
var themesYAML []byte

type Colors struct {
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	Accent     string `yaml:"accent"`
	Card       string `yaml:"card"`
}

type Theme struct {
	Slug     string   `yaml:"slug"`
	Title    string   `yaml:"title"`
	Tagline  string   `yaml:"tagline"`
	BuyLabel string   `yaml:"buy_label"`
	Card     string   `yaml:"card"`
	Columns  int      `yaml:"columns"`
	Featured bool     `yaml:"featured"`
	Sizes    []string `yaml:"sizes"`
	Teaser   string   `yaml:"teaser"`
	Colors   Colors   `yaml:"colors"`
}

var cards = map[string]bool{"card_glass": true, "card_thumb": true, "card_tile": true}

// All devuelve los temas embebidos en el orden del archivo.
func All() ([]Theme, error) {
	return parse(themesYAML)
}

// Load busca un tema por slug.
func Load(slug string) (Theme, error) {
	all, err := All()
	if err != nil {
		return Theme{}, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, t := range all {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("tema %q: %w", slug, domain.ErrNotFound)
}

func parse(b []byte) ([]Theme, error) {
	var list []Theme
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("themes.yaml: %w", err)
	}
	for i := range list {
		t := &list[i]
		if t.Slug == "" {
			return nil, fmt.Errorf("themes.yaml: tema %d sin slug", i)
		}
		if t.Columns <= 0 {
			t.Columns = 3
		}
		if t.Card == "" {
			t.Card = "card_glass"
		}
		if !cards[t.Card] {
			return nil, fmt.Errorf("themes.yaml: %s usa card desconocida %q", t.Slug, t.Card)
		}
		if len(t.Sizes) == 0 {
			t.Sizes = domain.DefaultSizes
		}
		if t.BuyLabel == "" {
			t.BuyLabel = "Buy"
		}
	}
	return list, nil
}

// Grid reparte los productos en cols columnas: la fila i va a la columna i mod cols.
func Grid(products []domain.Product, cols int) [][]domain.Product {
	if cols <= 0 {
		cols = 1
	}
	grid := make([][]domain.Product, cols)
	for i, p := range products {
		grid[i%cols] = append(grid[i%cols], p)
	}
	return grid
}
