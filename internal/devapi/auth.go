package devapi

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"saborconquista/internal/model"
)

var (
	ErrUserAlreadyExists   = errors.New("Email já cadastrado")
	ErrInvalidCredentials  = errors.New("Email ou senha inválidos")
	ErrInvalidRegistration = errors.New("Dados de cadastro inválidos")
	ErrNotFound            = errors.New("Recurso não encontrado")
	ErrInvalidTransition   = errors.New("Transição de status inválida")
)

// AuthService registers and authenticates accounts.
type AuthService struct {
	repo   *Repository
	tokens *TokenIssuer
	logger *zap.Logger
}

func NewAuthService(repo *Repository, tokens *TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

// Register creates an account and logs it in.
func (s *AuthService) Register(req model.RegisterRequest) (*model.AuthResponse, error) {
	if strings.TrimSpace(req.Nome) == "" || strings.TrimSpace(req.Email) == "" || len(req.Senha) < model.MinPasswordLength {
		return nil, ErrInvalidRegistration
	}
	role, err := model.ParseRole(string(req.Role))
	if err != nil {
		return nil, ErrInvalidRegistration
	}

	hashed, err := HashPassword(req.Senha)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	acc := &account{
		User: model.User{
			Nome:     strings.TrimSpace(req.Nome),
			Email:    strings.TrimSpace(req.Email),
			Telefone: req.Telefone,
			Role:     role,
		},
		PasswordHash: hashed,
		Endereco:     req.Endereco,
		Ativo:        req.Ativo,
	}
	if !s.repo.CreateUser(acc) {
		return nil, ErrUserAlreadyExists
	}
	s.logger.Info("user registered", zap.String("user_id", acc.ID), zap.String("role", string(role)))
	return s.respond(acc)
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(email, senha string) (*model.AuthResponse, error) {
	acc := s.repo.FindUserByEmail(email)
	if acc == nil || !CheckPasswordHash(senha, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.respond(acc)
}

func (s *AuthService) respond(acc *account) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(acc.ID, acc.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.AuthResponse{
		User: &model.AuthUser{
			ID:       model.ID(acc.ID),
			Nome:     acc.Nome,
			Email:    acc.Email,
			Telefone: acc.Telefone,
			// lower case on the wire, like the production backend
			Role: strings.ToLower(string(acc.Role)),
		},
		Token: token,
	}, nil
}

// SeedUser creates an account unless the email already exists.
func (s *AuthService) SeedUser(nome, email, senha string, role model.Role) error {
	if s.repo.FindUserByEmail(email) != nil {
		return nil
	}
	_, err := s.Register(model.RegisterRequest{
		Nome: nome, Email: email, Senha: senha, Telefone: "0000000000", Role: role, Ativo: true,
	})
	return err
}
