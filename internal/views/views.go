package views

import (
	"embed"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phenrril/sheetstore/internal/domain"
	"github.com/phenrril/sheetstore/internal/theme"
)

//go:embed *.html
var FS embed.FS

// Funcs son las funciones disponibles en todas las plantillas.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		// los colores vienen de themes.yaml embebido, no del usuario
		"css": func(s string) template.CSS { return template.CSS(s) },
		// el precio se muestra tal cual viene en la planilla
		"price": func(d decimal.Decimal) string { return d.String() },
		"img": func(u string) string {
			return strings.ReplaceAll(strings.TrimSpace(u), " ", "%20")
		},
		"pct": func(cols int) template.CSS {
			if cols <= 0 {
				cols = 1
			}
			return template.CSS(decimal.NewFromInt(100).DivRound(decimal.NewFromInt(int64(cols)), 4).String() + "%")
		},
		"card": func(p domain.Product, t theme.Theme) map[string]any {
			return map[string]any{"P": p, "Theme": t}
		},
	}
}

func Parse() (*template.Template, error) {
	return template.New("layout").Funcs(Funcs()).ParseFS(FS, "*.html")
}
