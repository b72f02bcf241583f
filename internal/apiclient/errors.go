package apiclient

import (
	"errors"
	"net/http"
)

var (
	// ErrNoResponse means the request was sent but no response came back.
	ErrNoResponse = errors.New("Sem resposta do servidor. Verifique sua conexão.")
	// ErrRequestSetup means the request could not even be built.
	ErrRequestSetup = errors.New("Erro ao configurar a requisição.")
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("sessão expirada, faça login novamente")
	// ErrInvalidResponse means a 2xx response whose body could not be understood.
	ErrInvalidResponse = errors.New("Resposta inválida do servidor")
)

const fallbackMessage = "Erro na requisição"

// APIError is a response the backend rejected.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// errorBody is the shape of error responses; either field may carry the message.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(status int, body errorBody) *APIError {
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fallbackMessage
	}
	return &APIError{Status: status, Message: msg}
}

// Message turns an error from this package into text for the user: the server message for
// rejected requests, the connectivity text when nothing came back, fallback otherwise.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNoResponse):
		return ErrNoResponse.Error()
	case errors.Is(err, ErrInvalidResponse):
		return ErrInvalidResponse.Error()
	case errors.Is(err, ErrRequestSetup):
		return ErrRequestSetup.Error()
	}
	return fallback
}
