package domain

type View string

const (
	ViewCatalog View = "catalog"
	ViewOrder   View = "order_detail"
	ViewAdmin   View = "admin"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// NavState es el estado de navegación de un visitante. El valor cero es la
// vista de catálogo. Selected sólo tiene sentido en ViewOrder; las otras
// vistas lo ignoran.
type NavState struct {
	View       View     `json:"view"`
	Selected   *Product `json:"selected,omitempty"`
	Authorized bool     `json:"authorized"`
	Flash      *Flash   `json:"flash,omitempty"`
}

func NewNavState() *NavState { return &NavState{View: ViewCatalog} }

func (s *NavState) Current() View {
	switch s.View {
	case ViewOrder:
		if s.Selected == nil {
			return ViewCatalog
		}
		return ViewOrder
	case ViewAdmin:
		return ViewAdmin
	default:
		return ViewCatalog
	}
}

// Select pasa a la vista de pedido con el producto elegido. Sin producto no
// hay transición.
func (s *NavState) Select(p *Product) error {
	if p == nil {
		return ErrNoProduct
	}
	if s.Current() == ViewAdmin {
		return ErrInvalidTransition
	}
	cp := *p
	s.Selected = &cp
	s.View = ViewOrder
	return nil
}

func (s *NavState) Back() { s.View = ViewCatalog }

func (s *NavState) OpenAdmin() { s.View = ViewAdmin }

func (s *NavState) OpenShop() { s.View = ViewCatalog }

// CompleteOrder vuelve al catálogo después de un envío exitoso.
func (s *NavState) CompleteOrder() {
	if s.Current() != ViewOrder {
		return
	}
	s.View = ViewCatalog
}

func (s *NavState) SetFlash(kind FlashKind, msg string) {
	s.Flash = &Flash{Kind: kind, Message: msg}
}

// PopFlash devuelve el mensaje pendiente y lo borra.
func (s *NavState) PopFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}
