// Package devapi is an in-memory implementation of the restaurant REST backend. It serves the
// web client during development and in end-to-end tests.
package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"saborconquista/internal/model"
)

const maxUploadSize = 32 << 20

type Server struct {
	repo   *Repository
	auth   *AuthService
	tokens *TokenIssuer
	logger *zap.Logger
}

func NewServer(repo *Repository, tokens *TokenIssuer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		repo:   repo,
		auth:   NewAuthService(repo, tokens, logger),
		tokens: tokens,
		logger: logger,
	}
}

// Auth exposes the account service, used for seeding.
func (s *Server) Auth() *AuthService { return s.auth }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/uploads/{itemID}/{n}", s.handlePhoto)

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/register", s.handleRegister)

	r.Route("/menu-items", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListItems)
		r.Get("/category/{category}", s.handleListByCategory)
		r.Get("/search", s.handleSearch)
		r.With(s.requireRoles(model.RoleAdmin)).Post("/", s.handleCreateItem)
		r.With(s.requireRoles(model.RoleAdmin)).Put("/{id}", s.handleUpdateItem)
		r.With(s.requireRoles(model.RoleAdmin)).Delete("/{id}", s.handleDeleteItem)
		r.With(s.requireRoles(model.RoleAdmin, model.RoleKitchen)).Patch("/{id}/disponibilidade", s.handleAvailability)
	})

	r.Route("/api/addresses", func(r chi.Router) {
		r.Use(s.authMiddleware, requireCustomerHeader)
		r.Get("/", s.handleListAddresses)
		r.Post("/", s.handleCreateAddress)
		r.Patch("/{id}/default", s.handleSetDefaultAddress)
	})

	r.Route("/api/pedidos", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleKitchen))
		r.Get("/cozinha", s.handleKitchenOrders)
		r.Patch("/{id}/status", s.handleOrderStatus)
	})

	return r
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Token de autenticação ausente")
			return
		}
		claims, err := s.tokens.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token inválido ou expirado")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := model.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || !allowed.Allows(claims.Role) {
				writeError(w, http.StatusForbidden, "Acesso negado")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requireCustomerHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("X-Customer-Id")) == "" {
			writeError(w, http.StatusBadRequest, "Cabeçalho X-Customer-Id obrigatório")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	resp, err := s.auth.Login(req.Email, req.Senha)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Falha ao autenticar")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	resp, err := s.auth.Register(req)
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidRegistration):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Falha ao registrar")
	default:
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (s *Server) handleListItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.ListItems())
}

func (s *Server) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	out := []model.MenuItem{}
	for _, it := range s.repo.ListItems() {
		if it.Categoria == category {
			out = append(out, it)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	out := []model.MenuItem{}
	for _, it := range s.repo.ListItems() {
		if query == "" || strings.Contains(strings.ToLower(it.Nome), query) {
			out = append(out, it)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// parseItemForm reads the multipart menu item form.
func parseItemForm(r *http.Request) (model.MenuItem, []photo, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return model.MenuItem{}, nil, errors.New("Formulário inválido")
	}
	nome := strings.TrimSpace(r.FormValue("nome"))
	if nome == "" {
		return model.MenuItem{}, nil, errors.New("Nome obrigatório")
	}
	preco, err := strconv.ParseInt(r.FormValue("preco"), 10, 64)
	if err != nil || preco < 0 {
		return model.MenuItem{}, nil, errors.New("Preço inválido")
	}
	categoria := r.FormValue("categoria")
	if _, ok := model.LookupCategory(categoria); !ok {
		return model.MenuItem{}, nil, errors.New("Categoria inválida")
	}
	disponivel, _ := strconv.ParseBool(r.FormValue("disponibilidade"))

	var photos []photo
	for _, fh := range r.MultipartForm.File["fotos"] {
		f, err := fh.Open()
		if err != nil {
			return model.MenuItem{}, nil, errors.New("Foto inválida")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return model.MenuItem{}, nil, errors.New("Foto inválida")
		}
		photos = append(photos, photo{ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	if len(photos) > 5 {
		return model.MenuItem{}, nil, errors.New("Máximo de 5 fotos")
	}

	return model.MenuItem{
		Nome:            nome,
		Descricao:       strings.TrimSpace(r.FormValue("descricao")),
		Preco:           preco,
		Categoria:       categoria,
		Disponibilidade: disponivel,
	}, photos, nil
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	it, photos, err := parseItemForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.repo.SaveItem(it, photos))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.repo.FindItem(id); !ok {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	it, photos, err := parseItemForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	it.ID = model.ID(id)
	writeJSON(w, http.StatusOK, s.repo.SaveItem(it, photos))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if !s.repo.DeleteItem(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Disponibilidade *bool `json:"disponibilidade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Disponibilidade == nil {
		writeError(w, http.StatusBadRequest, "Campo disponibilidade obrigatório")
		return
	}
	it, ok := s.repo.SetAvailability(chi.URLParam(r, "id"), *body.Disponibilidade)
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	p, ok := s.repo.Photo(chi.URLParam(r, "itemID") + "/" + chi.URLParam(r, "n"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if p.ContentType != "" {
		w.Header().Set("Content-Type", p.ContentType)
	}
	w.Header().Set("Cache-Control", "max-age=3600")
	_, _ = w.Write(p.Data)
}

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.ListAddresses(r.Header.Get("X-Customer-Id")))
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	var draft model.AddressDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.repo.AddAddress(r.Header.Get("X-Customer-Id"), draft))
}

func (s *Server) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	if !s.repo.SetDefaultAddress(r.Header.Get("X-Customer-Id"), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKitchenOrders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.KitchenOrders())
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	o, err := s.repo.UpdateOrderStatus(chi.URLParam(r, "id"), body.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeJSON(w, http.StatusOK, o)
	}
}

// Seed fills the repository with a manager account, a small catalog and a few open orders.
func (s *Server) Seed(adminEmail, adminPassword string) error {
	if err := s.auth.SeedUser("Gerente", adminEmail, adminPassword, model.RoleAdmin); err != nil {
		return err
	}
	if len(s.repo.ListItems()) > 0 {
		return nil
	}
	items := []model.MenuItem{
		{Nome: "Pizza Calabresa", Descricao: "Calabresa, cebola e azeitonas", Preco: 4590, Categoria: model.CategoryPizzas, Disponibilidade: true},
		{Nome: "Pizza Margherita", Descricao: "Tomate, mussarela e manjericão", Preco: 4290, Categoria: model.CategoryPizzas, Disponibilidade: true},
		{Nome: "X-Burguer", Descricao: "Pão, carne 150g e queijo", Preco: 2500, Categoria: model.CategoryHamburgueres, Disponibilidade: true},
		{Nome: "Batata Frita", Descricao: "Porção de 400g", Preco: 2200, Categoria: model.CategoryPorcoes, Disponibilidade: true},
		{Nome: "Refrigerante Lata", Preco: 650, Categoria: model.CategoryBebidas, Disponibilidade: true},
		{Nome: "Pudim", Descricao: "Pudim de leite condensado", Preco: 1200, Categoria: model.CategorySobremesas, Disponibilidade: false},
	}
	for _, it := range items {
		s.repo.SaveItem(it, nil)
	}
	now := time.Now()
	s.repo.AddOrder(model.Order{Numero: "101", Status: model.OrderPending, Horario: now.Add(-12 * time.Minute), Tipo: model.OrderDelivery,
		Itens: []model.OrderItem{{ID: "1", Nome: "Pizza Calabresa", Quantidade: 1}, {ID: "2", Nome: "Refrigerante Lata", Quantidade: 2}}})
	s.repo.AddOrder(model.Order{Numero: "102", Status: model.OrderPreparing, Horario: now.Add(-25 * time.Minute), Tipo: model.OrderTakeout,
		Itens: []model.OrderItem{{ID: "3", Nome: "X-Burguer", Quantidade: 2, Observacao: "sem cebola"}}})
	s.repo.AddOrder(model.Order{Numero: "103", Status: model.OrderPending, Horario: now.Add(-3 * time.Minute), Tipo: model.OrderDelivery,
		Itens: []model.OrderItem{{ID: "4", Nome: "Batata Frita", Quantidade: 1}}})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
