package model

import (
	"errors"
	"strings"
)

var (
	ErrMissingField     = errors.New("preencha todos os campos obrigatórios")
	ErrPasswordTooShort = errors.New("a senha deve ter pelo menos 6 caracteres")
	ErrPasswordMismatch = errors.New("as senhas não coincidem")
	ErrInvalidRole      = errors.New("tipo de usuário inválido")
)

// MinPasswordLength mirrors the registration form constraint.
const MinPasswordLength = 6

// Result is what store operations hand back to views instead of an error.
type Result struct {
	Success bool
	Message string
}

// Ok is a successful Result.
func Ok() Result { return Result{Success: true} }

// Fail is a failed Result with a human-readable message.
func Fail(msg string) Result { return Result{Success: false, Message: msg} }

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	Telefone string `json:"telefone"`
	Role     Role   `json:"role"`
	Endereco string `json:"endereco,omitempty"`
	Ativo    bool   `json:"ativo"`
}

// AuthResponse is what both auth endpoints return. User is kept raw so the role can be
// normalized before it reaches the session.
type AuthResponse struct {
	User  *AuthUser `json:"user"`
	Token string    `json:"token"`
}

// AuthUser is the user object exactly as the backend sends it.
type AuthUser struct {
	ID       ID     `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Role     string `json:"role"`
}

// RegisterForm is the registration form as submitted by the user.
type RegisterForm struct {
	Nome           string
	Email          string
	Senha          string
	ConfirmarSenha string
	Telefone       string
	Role           string
	Endereco       string
}

// Validate checks the form before any network call and builds the request body.
func (f RegisterForm) Validate() (RegisterRequest, error) {
	nome := strings.TrimSpace(f.Nome)
	email := strings.TrimSpace(f.Email)
	if nome == "" || email == "" || f.Senha == "" || strings.TrimSpace(f.Telefone) == "" {
		return RegisterRequest{}, ErrMissingField
	}
	if len(f.Senha) < MinPasswordLength {
		return RegisterRequest{}, ErrPasswordTooShort
	}
	if f.Senha != f.ConfirmarSenha {
		return RegisterRequest{}, ErrPasswordMismatch
	}
	role, err := ParseRole(f.Role)
	if err != nil {
		return RegisterRequest{}, ErrInvalidRole
	}
	req := RegisterRequest{
		Nome:     nome,
		Email:    email,
		Senha:    f.Senha,
		Telefone: strings.TrimSpace(f.Telefone),
		Role:     role,
		Ativo:    true,
	}
	// address is only collected for customers
	if role == RoleCustomer {
		req.Endereco = strings.TrimSpace(f.Endereco)
	}
	return req, nil
}
