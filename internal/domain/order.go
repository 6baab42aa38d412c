package domain

// DefaultSizes son los talles del formulario cuando el tema no define otros.
var DefaultSizes = []string{"S", "M", "L", "XL"}

// Order es un pedido tal como lo espera el webhook: cuatro strings planos.
// No se guarda en ningún lado; se arma, se envía una vez y se descarta.
// Nombre y teléfono viajan como los escribió el visitante, vacíos incluidos.
type Order struct {
	Name  string `json:"name"`
	Size  string `json:"size" validate:"required,size"`
	Phone string `json:"phone"`
	Item  string `json:"item" validate:"required"`
}

func NewOrder(p Product, name, size, phone string) Order {
	return Order{Name: name, Size: size, Phone: phone, Item: p.Name}
}
