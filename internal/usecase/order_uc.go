package usecase

import (
	"context"
	"errors"
	"slices"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/domain"
)

type OrderUC struct {
	Sink     domain.OrderSink
	Notifier domain.OrderNotifier
	sizes    []string
	validate *validatorv10.Validate
}

func NewOrderUC(sink domain.OrderSink, notifier domain.OrderNotifier, sizes []string) *OrderUC {
	if len(sizes) == 0 {
		sizes = domain.DefaultSizes
	}
	uc := &OrderUC{Sink: sink, Notifier: notifier, sizes: slices.Clone(sizes)}
	v := validatorv10.New()
	_ = v.RegisterValidation("size", func(fl validatorv10.FieldLevel) bool {
		return slices.Contains(uc.sizes, fl.Field().String())
	})
	uc.validate = v
	return uc
}

func (uc *OrderUC) Sizes() []string { return slices.Clone(uc.sizes) }

// Validate sólo exige un talle de la lista y el producto; nombre y teléfono
// pueden ir vacíos.
func (uc *OrderUC) Validate(o domain.Order) error {
	if err := uc.validate.Struct(o); err != nil {
		var ve validatorv10.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fieldError{field: ve[0].Field(), tag: ve[0].Tag()}
		}
		return err
	}
	return nil
}

// Place valida y envía en un solo intento. Un pedido inválido devuelve un
// error que matchea domain.ErrInvalidOrder y nunca llega al webhook.
func (uc *OrderUC) Place(ctx context.Context, o domain.Order) error {
	if err := uc.Validate(o); err != nil {
		log.Info().Err(err).Str("item", o.Item).Msg("pedido inválido")
		return err
	}
	if err := uc.Sink.Send(ctx, o); err != nil {
		log.Error().Err(err).Str("item", o.Item).Str("size", o.Size).Msg("enviar pedido")
		return err
	}
	log.Info().Str("item", o.Item).Str("size", o.Size).Msg("pedido enviado")
	if uc.Notifier != nil {
		if err := uc.Notifier.OrderSubmitted(ctx, o); err != nil {
			log.Warn().Err(err).Msg("notificación de pedido falló")
		}
	}
	return nil
}

// Submit es Place reducido a bool: true sólo si el webhook confirmó; un false
// no garantiza que el pedido no haya llegado.
func (uc *OrderUC) Submit(ctx context.Context, o domain.Order) bool {
	return uc.Place(ctx, o) == nil
}

type fieldError struct{ field, tag string }

func (e fieldError) Error() string { return e.field + ": " + e.tag }

func (e fieldError) Unwrap() error { return domain.ErrInvalidOrder }
