package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/domain"
)

const sessionCookie = "sheetstore_sid"

// visit es el estado de navegación de una request, ligado a su cookie.
type visit struct {
	id    string
	state *domain.NavState
}

// loadVisit lee la cookie firmada y trae el estado guardado. Una cookie
// inválida o un estado vencido arrancan una sesión nueva en el catálogo.
func (s *Server) loadVisit(w http.ResponseWriter, r *http.Request) *visit {
	id, ok := s.readSessionID(r)
	if !ok {
		id = uuid.NewString()
	}
	s.writeSessionID(w, r, id)
	if !ok {
		return &visit{id: id, state: domain.NewNavState()}
	}
	st, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Msg("leer sesión")
		}
		st = domain.NewNavState()
	}
	return &visit{id: id, state: st}
}

func (s *Server) saveVisit(r *http.Request, v *visit) {
	if err := s.sessions.Save(r.Context(), v.id, v.state); err != nil {
		log.Error().Err(err).Msg("guardar sesión")
	}
}

func (s *Server) sign(id string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(id))
	return h.Sum(nil)
}

func (s *Server) readSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || !hmac.Equal(sig, s.sign(parts[1])) {
		return "", false
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", false
	}
	return parts[1], true
}

func (s *Server) writeSessionID(w http.ResponseWriter, r *http.Request, id string) {
	val := base64.RawURLEncoding.EncodeToString(s.sign(id)) + "." + id
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: val, Path: "/", HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode})
}
