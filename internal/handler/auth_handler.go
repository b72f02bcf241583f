package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saborconquista/internal/middleware"
	"saborconquista/internal/model"
	"saborconquista/internal/web"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

type loginData struct {
	Email string
}

type registerData struct {
	Form  model.RegisterForm
	Roles []model.Role
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/menu")
		return
	}
	render(c, http.StatusOK, viewLogin, web.Page{Title: "Entrar", Data: loginData{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	email := strings.TrimSpace(c.PostForm("email"))

	res := ws.Session.Login(c.Request.Context(), email, c.PostForm("senha"))
	if !res.Success {
		// a backend answering bad credentials with 401 must not look like an expired session
		ws.TakeExpired()
		render(c, http.StatusUnauthorized, viewLogin, web.Page{
			Title: "Entrar",
			Error: res.Message,
			Data:  loginData{Email: email},
		})
		return
	}
	h.logger.Info("user logged in", zap.String("client_id", ws.ID))
	c.Redirect(http.StatusSeeOther, "/menu")
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, viewRegister, web.Page{
		Title: "Cadastro",
		Data:  registerData{Form: model.RegisterForm{Role: string(model.RoleCustomer)}, Roles: model.Roles},
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	form := model.RegisterForm{
		Nome:           c.PostForm("nome"),
		Email:          c.PostForm("email"),
		Senha:          c.PostForm("senha"),
		ConfirmarSenha: c.PostForm("confirmarSenha"),
		Telefone:       c.PostForm("telefone"),
		Role:           c.PostForm("role"),
		Endereco:       c.PostForm("endereco"),
	}

	res := ws.Session.Register(c.Request.Context(), form)
	if !res.Success {
		ws.TakeExpired()
		form.Senha, form.ConfirmarSenha = "", ""
		render(c, http.StatusBadRequest, viewRegister, web.Page{
			Title: "Cadastro",
			Error: res.Message,
			Data:  registerData{Form: form, Roles: model.Roles},
		})
		return
	}
	h.logger.Info("user registered", zap.String("client_id", ws.ID))
	c.Redirect(http.StatusSeeOther, "/menu")
}

// Logout ends the session locally; nothing is sent to the backend.
func (h *AuthHandler) Logout(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	ws.Session.Logout(c.Request.Context())
	ws.TakeExpired()
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(r gin.IRouter) {
	r.GET(middleware.LoginPath, h.LoginPage)
	r.POST(middleware.LoginPath, h.Login)
	r.GET("/registro", h.RegisterPage)
	r.POST("/registro", h.Register)
	r.POST("/logout", h.Logout)
	r.GET("/logout", h.Logout)
}
