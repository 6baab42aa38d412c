package usecase

import (
	"context"
	"crypto/subtle"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/domain"
)

type AdminUC struct {
	secret   string
	OrderLog domain.TableSource
}

// NewAdminUC recibe la clave en texto plano; orderLog puede ser nil.
func NewAdminUC(secret string, orderLog domain.TableSource) *AdminUC {
	return &AdminUC{secret: secret, OrderLog: orderLog}
}

// Authorize compara en tiempo constante. "" sólo pasa si la clave configurada es "".
func (uc *AdminUC) Authorize(input string) bool {
	return subtle.ConstantTimeCompare([]byte(input), []byte(uc.secret)) == 1
}

func (uc *AdminUC) HasOrderLog() bool { return uc.OrderLog != nil }

// Orders lee el log de pedidos de su planilla; mismo contrato que el catálogo.
func (uc *AdminUC) Orders(ctx context.Context) domain.Table {
	if uc.OrderLog == nil {
		return domain.Table{}
	}
	t, err := uc.OrderLog.FetchTable(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo cargar el log de pedidos")
		return domain.Table{Err: err}
	}
	return t
}
