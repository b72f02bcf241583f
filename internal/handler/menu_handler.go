package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/cart"
	"saborconquista/internal/middleware"
	"saborconquista/internal/model"
	"saborconquista/internal/web"
)

type MenuHandler struct {
	logger    *zap.Logger
	photoBase string
}

// NewMenuHandler creates the menu and cart pages. photoBase prefixes the photo paths the backend
// returns.
func NewMenuHandler(logger *zap.Logger, photoBase string) *MenuHandler {
	return &MenuHandler{logger: logger, photoBase: photoBase}
}

type menuData struct {
	Categories []model.Category
	Active     string
	Items      []model.MenuItem
	Search     string
	LoadError  string
	PhotoBase  string
}

type cartData struct {
	Lines []cart.Line
	Total int64
}

func menuPath(category string) string {
	if category == "" {
		return "/menu"
	}
	return "/menu?" + url.Values{"categoria": {category}}.Encode()
}

func (h *MenuHandler) Menu(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	ctx := c.Request.Context()

	if c.Query("recarregar") != "" {
		_ = ws.Menu.Load(ctx)
	} else {
		_ = ws.Menu.EnsureLoaded(ctx)
	}

	status := http.StatusOK
	page := web.Page{Title: "Cardápio"}
	if category := c.Query("categoria"); category != "" {
		if err := ws.Menu.SetActiveCategory(category); err != nil {
			status = http.StatusBadRequest
			page.Error = "Categoria inválida"
		}
	}

	data := menuData{
		Categories: ws.Menu.Categories(),
		Active:     ws.Menu.ActiveCategory(),
		Items:      ws.Menu.Filtered(),
		LoadError:  ws.Menu.Error(),
		PhotoBase:  h.photoBase,
	}
	// a search replaces the category view with the backend's matches
	if q := strings.TrimSpace(c.Query("busca")); q != "" {
		data.Search = q
		items, err := ws.Menu.Search(ctx, q)
		if err != nil {
			page.Error = apiclient.Message(err, "Falha na busca. Tente novamente.")
		}
		data.Items = items
	}
	page.Data = data
	render(c, status, viewMenu, page)
}

func (h *MenuHandler) AddToCart(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	back := menuPath(c.PostForm("categoria"))

	qty, err := strconv.Atoi(c.DefaultPostForm("quantidade", "1"))
	if err != nil {
		flash(c, cart.ErrInvalidQuantity.Error())
		redirect(c, back)
		return
	}
	item, ok := ws.Menu.Find(c.PostForm("id"))
	if !ok {
		flash(c, "Item não encontrado no cardápio")
		redirect(c, back)
		return
	}
	if err := ws.Cart.Add(item, qty); err != nil {
		flash(c, err.Error())
		redirect(c, back)
		return
	}
	flash(c, fmt.Sprintf("%s adicionado ao carrinho", item.Nome))
	redirect(c, back)
}

func (h *MenuHandler) Cart(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	render(c, http.StatusOK, viewCart, web.Page{
		Title: "Carrinho",
		Data:  cartData{Lines: ws.Cart.Lines(), Total: ws.Cart.Total()},
	})
}

func (h *MenuHandler) SetQuantity(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	qty, err := strconv.Atoi(c.PostForm("quantidade"))
	if err != nil {
		flash(c, cart.ErrInvalidQuantity.Error())
	} else if err := ws.Cart.SetQuantity(model.ID(c.Param("id")), qty); err != nil {
		flash(c, err.Error())
	}
	redirect(c, "/carrinhoDeCompras")
}

func (h *MenuHandler) Remove(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if err := ws.Cart.Remove(model.ID(c.Param("id"))); err != nil {
		flash(c, err.Error())
	}
	redirect(c, "/carrinhoDeCompras")
}

func (h *MenuHandler) Clear(c *gin.Context) {
	middleware.CurrentWorkspace(c).Cart.Clear()
	redirect(c, "/carrinhoDeCompras")
}

// RegisterMenuRoutes registers the menu for every signed-in role and the cart for customers.
func (h *MenuHandler) RegisterMenuRoutes(r gin.IRouter) {
	r.GET("/menu", middleware.RequireRoles(middleware.MenuRoles...), h.Menu)

	customer := r.Group("/", middleware.CustomerOnly())
	{
		customer.POST("/menu/carrinho", h.AddToCart)
		customer.GET("/carrinhoDeCompras", h.Cart)
		customer.POST("/carrinhoDeCompras/limpar", h.Clear)
		customer.POST("/carrinhoDeCompras/:id/quantidade", h.SetQuantity)
		customer.POST("/carrinhoDeCompras/:id/remover", h.Remove)
	}
}
