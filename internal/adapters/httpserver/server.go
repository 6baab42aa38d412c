package httpserver

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/adapters/sheet"
	"github.com/phenrril/sheetstore/internal/config"
	"github.com/phenrril/sheetstore/internal/domain"
	"github.com/phenrril/sheetstore/internal/theme"
	"github.com/phenrril/sheetstore/internal/usecase"
)

const requestTimeout = 60 * time.Second

const (
	msgOrderPlaced  = "✅ Order Placed! We'll text you."
	msgOrderFailed  = "❌ Connection failed."
	msgOrderInvalid = "Please pick one of the listed sizes."
	msgNoSelection  = "Pick a product first."
	msgGone         = "That product is no longer available."
)

type Server struct {
	router   chi.Router
	tmpl     *template.Template
	theme    theme.Theme
	catalog  *usecase.CatalogUC
	orders   *usecase.OrderUC
	admin    *usecase.AdminUC
	sessions domain.SessionStore
	secret   []byte

	// elige el destacado; nil = al azar
	pick func(n int) int
}

func New(t *template.Template, th theme.Theme, c *usecase.CatalogUC, o *usecase.OrderUC, a *usecase.AdminUC, sessions domain.SessionStore, sessionKey string) *Server {
	if sessionKey == "" {
		sessionKey = config.DevSessionKey
	}
	s := &Server{tmpl: t, theme: th, catalog: c, orders: o, admin: a, sessions: sessions, secret: []byte(sessionKey)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(middleware.Timeout(requestTimeout))
	s.router = r
	s.routes()
	return s
}

// SetFeaturedPicker fija cómo se elige el producto destacado.
func (s *Server) SetFeaturedPicker(pick func(n int) int) { s.pick = pick }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) routes() {
	r := s.router
	r.Get("/", s.handleHome)
	r.Post("/select", s.mutate(s.handleSelect))
	r.Post("/back", s.mutate(func(_ *http.Request, st *domain.NavState) { st.Back() }))
	r.Post("/nav/shop", s.mutate(func(_ *http.Request, st *domain.NavState) { st.OpenShop() }))
	r.Post("/nav/admin", s.mutate(func(_ *http.Request, st *domain.NavState) { st.OpenAdmin() }))
	r.Post("/order", s.mutate(s.handleOrder))

	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth", s.mutate(s.handleAdminAuth))
		r.Post("/logout", s.mutate(func(_ *http.Request, st *domain.NavState) { st.Authorized = false }))
		r.Get("/export.xlsx", s.handleAdminExport)
	})

	r.Get("/api/catalog", s.apiCatalog)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
}

// mutate aplica un cambio al estado del visitante y redirige a / (PRG).
func (s *Server) mutate(fn func(r *http.Request, st *domain.NavState)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := s.loadVisit(w, r)
		fn(r, v.state)
		s.saveVisit(r, v)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	v := s.loadVisit(w, r)
	view := v.state.Current()
	flash := v.state.PopFlash()
	s.saveVisit(r, v)

	data := map[string]any{
		"Theme":      s.theme,
		"Flash":      flash,
		"View":       string(view),
		"Authorized": v.state.Authorized,
	}
	switch view {
	case domain.ViewOrder:
		data["Product"] = v.state.Selected
		data["Sizes"] = s.orders.Sizes()
		s.render(w, "order.html", data)
	case domain.ViewAdmin:
		if v.state.Authorized {
			cat := s.catalog.Load(r.Context())
			data["Products"] = cat.Products
			data["HasOrderLog"] = s.admin.HasOrderLog()
			if s.admin.HasOrderLog() {
				data["Orders"] = s.admin.Orders(r.Context())
			}
		}
		s.render(w, "admin.html", data)
	default:
		cat := s.catalog.Load(r.Context())
		data["Empty"] = cat.Empty()
		data["LoadFailed"] = cat.Err != nil
		data["Grid"] = theme.Grid(cat.Products, s.theme.Columns)
		if s.theme.Featured {
			if p, ok := usecase.Featured(cat, s.pick); ok {
				data["Featured"] = p
			}
		}
		s.render(w, "catalog.html", data)
	}
}

func (s *Server) handleSelect(r *http.Request, st *domain.NavState) {
	cat := s.catalog.Load(r.Context())
	p, ok := cat.Find(r.FormValue("key"))
	if !ok {
		st.SetFlash(domain.FlashError, msgGone)
		return
	}
	if err := st.Select(p); err != nil {
		log.Debug().Err(err).Str("view", string(st.Current())).Msg("select ignorado")
	}
}

func (s *Server) handleOrder(r *http.Request, st *domain.NavState) {
	if st.Current() != domain.ViewOrder {
		st.SetFlash(domain.FlashError, msgNoSelection)
		return
	}
	o := domain.NewOrder(*st.Selected, r.FormValue("name"), r.FormValue("size"), r.FormValue("phone"))
	if err := s.orders.Place(r.Context(), o); err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			st.SetFlash(domain.FlashError, msgOrderInvalid)
		} else {
			st.SetFlash(domain.FlashError, msgOrderFailed)
		}
		return
	}
	st.CompleteOrder()
	st.SetFlash(domain.FlashSuccess, msgOrderPlaced)
}

func (s *Server) handleAdminAuth(r *http.Request, st *domain.NavState) {
	// una clave incorrecta no muestra error: se vuelve a pedir
	if s.admin.Authorize(r.FormValue("password")) {
		st.Authorized = true
	} else {
		log.Info().Str("ip", r.RemoteAddr).Msg("clave de admin incorrecta")
	}
	st.OpenAdmin()
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	v := s.loadVisit(w, r)
	if !v.state.Authorized {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	cat := s.catalog.Load(r.Context())
	if cat.Err != nil {
		http.Error(w, "inventory unavailable", http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := sheet.WriteXLSX(&buf, cat.Products); err != nil {
		log.Error().Err(err).Msg("export xlsx")
		http.Error(w, "export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

type catalogResponse struct {
	Items []domain.Product `json:"items"`
	Total int              `json:"total"`
	Error string           `json:"error,omitempty"`
}

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog.Load(r.Context())
	resp := catalogResponse{Items: cat.Products, Total: len(cat.Products)}
	if resp.Items == nil {
		resp.Items = []domain.Product{}
	}
	if cat.Err != nil {
		resp.Error = "inventory unavailable"
	}
	render.JSON(w, r, resp)
}

func (s *Server) render(w http.ResponseWriter, name string, data map[string]any) {
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
