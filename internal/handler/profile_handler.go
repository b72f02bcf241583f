package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saborconquista/internal/middleware"
	"saborconquista/internal/model"
	"saborconquista/internal/web"
	"saborconquista/internal/workspace"
)

type ProfileHandler struct {
	logger *zap.Logger
}

func NewProfileHandler(logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{logger: logger}
}

type profileData struct {
	Addresses []model.Address
	Draft     model.AddressDraft
	LoadError string
}

func draftFromForm(c *gin.Context) model.AddressDraft {
	return model.AddressDraft{
		Rua:         c.PostForm("rua"),
		Numero:      c.PostForm("numero"),
		Complemento: c.PostForm("complemento"),
		Bairro:      c.PostForm("bairro"),
		Cidade:      c.PostForm("cidade"),
		Estado:      c.PostForm("estado"),
		Zipcode:     c.PostForm("zipcode"),
	}
}

func (h *ProfileHandler) show(c *gin.Context, ws *workspace.Workspace, status int, errMsg string) {
	render(c, status, viewProfile, web.Page{
		Title: "Perfil",
		Error: errMsg,
		Data: profileData{
			Addresses: ws.Profile.Addresses(),
			Draft:     ws.Profile.Draft(),
			LoadError: ws.Profile.Error(),
		},
	})
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	user := middleware.CurrentUser(c)
	_ = ws.Profile.Load(c.Request.Context(), user.ID)
	h.show(c, ws, http.StatusOK, "")
}

// LookupCEP fills the new-address form from the postal service and shows it again.
func (h *ProfileHandler) LookupCEP(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	ws.Profile.FillFromCEP(c.Request.Context(), draftFromForm(c))
	h.show(c, ws, http.StatusOK, "")
}

func (h *ProfileHandler) AddAddress(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	user := middleware.CurrentUser(c)
	res := ws.Profile.Add(c.Request.Context(), user.ID, draftFromForm(c))
	if !res.Success {
		h.show(c, ws, http.StatusBadRequest, "")
		return
	}
	flash(c, "Endereço adicionado com sucesso")
	redirect(c, "/perfil")
}

func (h *ProfileHandler) SetDefault(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	user := middleware.CurrentUser(c)
	res := ws.Profile.SetDefault(c.Request.Context(), user.ID, c.Param("id"))
	flash(c, res.Message)
	redirect(c, "/perfil")
}

// RegisterProfileRoutes registers the customer profile pages.
func (h *ProfileHandler) RegisterProfileRoutes(r gin.IRouter) {
	p := r.Group("/perfil", middleware.CustomerOnly())
	{
		p.GET("", h.Profile)
		p.POST("/cep", h.LookupCEP)
		p.POST("/enderecos", h.AddAddress)
		p.POST("/enderecos/:id/padrao", h.SetDefault)
	}
}
