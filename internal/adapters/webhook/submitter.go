package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/phenrril/sheetstore/internal/domain"
)

// Submitter envía cada pedido al webhook (p.ej. un Apps Script) en un único intento.
type Submitter struct {
	url        string
	httpClient *http.Client
}

func NewSubmitter(webhookURL string, timeout time.Duration) *Submitter {
	return &Submitter{url: webhookURL, httpClient: &http.Client{Timeout: timeout}}
}

// NewOAuthSubmitter firma los pedidos con un token client-credentials.
func NewOAuthSubmitter(ctx context.Context, webhookURL string, timeout time.Duration, cc *clientcredentials.Config) *Submitter {
	base := &http.Client{Timeout: timeout}
	client := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	client.Timeout = timeout
	return &Submitter{url: webhookURL, httpClient: client}
}

// Send devuelve nil sólo si el webhook respondió 2xx.
func (s *Submitter) Send(ctx context.Context, o domain.Order) error {
	if strings.TrimSpace(s.url) == "" {
		return errors.New("webhook url vacía")
	}
	buf, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("error serializando pedido: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error de conexión con el webhook: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: status %d: %s", domain.ErrSinkRejected, res.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	return nil
}
