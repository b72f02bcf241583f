// Package postal looks up Brazilian postal codes (CEP) on ViaCEP.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"saborconquista/internal/model"
)

const DefaultBaseURL = "https://viacep.com.br/ws"

var (
	ErrInvalidCEP  = errors.New("o CEP deve ter 8 dígitos")
	ErrCEPNotFound = errors.New("CEP não encontrado")
)

// Result is the part of a ViaCEP answer used to fill the address form.
type Result struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// "erro" comes back as true or "true" depending on the API version
	Erro any `json:"erro,omitempty"`
}

func (r Result) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// Client calls ViaCEP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Lookup resolves cep, given with or without the hyphen.
func (c *Client) Lookup(ctx context.Context, cep string) (*Result, error) {
	digits := model.CEPDigits(cep)
	if len(digits) != 8 {
		return nil, ErrInvalidCEP
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, digits), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CEP lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return nil, ErrCEPNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CEP lookup returned status %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode CEP response: %w", err)
	}
	if res.notFound() {
		return nil, ErrCEPNotFound
	}
	c.logger.Debug("CEP resolved", zap.String("cep", digits), zap.String("cidade", res.Localidade))
	return &res, nil
}
