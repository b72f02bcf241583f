package model

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCEP    = errors.New("CEP inválido")
	ErrMissingStreet = errors.New("informe a rua")
)

var cepPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// Address is a customer delivery address.
type Address struct {
	ID          ID     `json:"id"`
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	Zipcode     string `json:"zipcode"`
	// the backend spells it this way
	IsDefault bool `json:"isDefalt"`
}

// AddressDraft is the new-address form.
type AddressDraft struct {
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	Zipcode     string `json:"zipcode"`
}

// Validate applies the form constraints: CEP as 00000-000 or 00000000, street required.
func (d AddressDraft) Validate() error {
	if !cepPattern.MatchString(strings.TrimSpace(d.Zipcode)) {
		return ErrInvalidCEP
	}
	if strings.TrimSpace(d.Rua) == "" {
		return ErrMissingStreet
	}
	return nil
}

// CEPDigits strips everything but digits from a postal code.
func CEPDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
