// Package handler serves the pages of the web client. Every handler works on the workspace of
// the requesting browser, so the stores it reads are that browser's own.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saborconquista/internal/middleware"
	"saborconquista/internal/web"
	"saborconquista/internal/workspace"
)

// Template names double as view names for the workspace.
const (
	viewHome         = "home"
	viewLogin        = "login"
	viewRegister     = "register"
	viewMenu         = "menu"
	viewCart         = "cart"
	viewProfile      = "profile"
	viewKitchenMenu  = "kitchen_menu"
	viewOrders       = workspace.ViewOrders
	viewManager      = "manager"
	viewUnauthorized = "unauthorized"
	viewNotFound     = "notfound"
)

const sessionExpiredMessage = "Sua sessão expirou. Faça login novamente."

// render shows view for the current browser. When a backend call has ended the session since the
// last page, the browser goes to the login page instead and render reports false.
func render(c *gin.Context, status int, view string, p web.Page) bool {
	ws := middleware.CurrentWorkspace(c)
	if ws.TakeExpired() && view != viewLogin {
		ws.SetFlash(sessionExpiredMessage)
		c.Redirect(http.StatusSeeOther, middleware.LoginPath)
		return false
	}
	ws.Enter(view)

	p.User = ws.Session.User()
	p.CartCount = ws.Cart.Count()
	if flash := ws.TakeFlash(); flash != "" && p.Flash == "" {
		p.Flash = flash
	}
	c.HTML(status, view, p)
	return true
}

// redirect finishes a form post. An expired session overrides the target with the login page.
func redirect(c *gin.Context, target string) {
	ws := middleware.CurrentWorkspace(c)
	if ws.TakeExpired() {
		ws.SetFlash(sessionExpiredMessage)
		target = middleware.LoginPath
	}
	c.Redirect(http.StatusSeeOther, target)
}

// flash keeps msg for the next page when it is not empty.
func flash(c *gin.Context, msg string) {
	if msg != "" {
		middleware.CurrentWorkspace(c).SetFlash(msg)
	}
}

// PageHandler serves the pages that need no store.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Home(c *gin.Context) {
	render(c, http.StatusOK, viewHome, web.Page{})
}

func (h *PageHandler) Unauthorized(c *gin.Context) {
	render(c, http.StatusForbidden, viewUnauthorized, web.Page{Title: "Não autorizado"})
}

func (h *PageHandler) NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, viewNotFound, web.Page{Title: "Página não encontrada"})
}
