package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saborconquista/internal/kitchen"
	"saborconquista/internal/menu"
	"saborconquista/internal/middleware"
	"saborconquista/internal/model"
	"saborconquista/internal/web"
)

// KitchenHandler serves the availability page and the order board.
type KitchenHandler struct {
	logger       *zap.Logger
	pollInterval time.Duration
}

func NewKitchenHandler(logger *zap.Logger, pollInterval time.Duration) *KitchenHandler {
	return &KitchenHandler{logger: logger, pollInterval: pollInterval}
}

type kitchenMenuData struct {
	Categories []model.Category
	Active     string
	Items      []model.MenuItem
	LoadError  string
}

type ordersData struct {
	Filters        []kitchen.Filter
	Active         kitchen.Filter
	Orders         []model.Order
	LastUpdated    time.Time
	LoadError      string
	RefreshSeconds int
}

func ordersPath(f string) string {
	if f == "" {
		return "/pedidos"
	}
	return "/pedidos?" + url.Values{"filtro": {f}}.Encode()
}

// KitchenMenu always fetches fresh data, availability changes from other staff must show up.
// With ?categoria= only that category is fetched.
func (h *KitchenHandler) KitchenMenu(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	ctx := c.Request.Context()
	page := web.Page{Title: "Disponibilidade"}
	data := kitchenMenuData{Categories: ws.Menu.Categories()}

	status := http.StatusOK
	if category := c.Query("categoria"); category != "" {
		items, err := ws.Menu.Category(ctx, category)
		switch {
		case errors.Is(err, menu.ErrUnknownCategory):
			status = http.StatusBadRequest
			page.Error = "Categoria inválida"
		case err != nil:
			data.LoadError = menu.LoadFailedMessage
		default:
			data.Active = category
		}
		data.Items = items
	} else {
		_ = ws.Menu.Load(ctx)
		data.Items = ws.Menu.Items()
		data.LoadError = ws.Menu.Error()
	}
	page.Data = data
	render(c, status, viewKitchenMenu, page)
}

func (h *KitchenHandler) ToggleAvailability(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	disponivel, err := strconv.ParseBool(c.PostForm("disponibilidade"))
	if err != nil {
		flash(c, "Valor de disponibilidade inválido")
		redirect(c, "/cardapioCozinha")
		return
	}
	res := ws.Catalog.SetAvailability(c.Request.Context(), c.Param("id"), disponivel)
	flash(c, res.Message)
	redirect(c, "/cardapioCozinha")
}

// Orders renders the board and keeps it polling while this stays the browser's current page.
func (h *KitchenHandler) Orders(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)

	page := web.Page{Title: "Pedidos"}
	status := http.StatusOK
	if f := c.Query("filtro"); f != "" {
		if err := ws.Kitchen.SetFilter(kitchen.Filter(f)); err != nil {
			status = http.StatusBadRequest
			page.Error = err.Error()
		}
	}
	if !ws.Kitchen.Polling() {
		_ = ws.Kitchen.Refresh(c.Request.Context())
	}

	page.Data = ordersData{
		Filters:        kitchen.Filters,
		Active:         ws.Kitchen.Filter(),
		Orders:         ws.Kitchen.Orders(),
		LastUpdated:    ws.Kitchen.LastUpdated(),
		LoadError:      ws.Kitchen.Error(),
		RefreshSeconds: int(h.pollInterval / time.Second),
	}
	if render(c, status, viewOrders, page) {
		ws.StartKitchenPolling()
	}
}

func (h *KitchenHandler) RefreshOrders(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if err := ws.Kitchen.Refresh(c.Request.Context()); err != nil {
		h.logger.Debug("manual order refresh failed", zap.Error(err))
	}
	redirect(c, ordersPath(c.PostForm("filtro")))
}

func (h *KitchenHandler) Advance(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	res := ws.Kitchen.Advance(c.Request.Context(), c.Param("id"), model.OrderStatus(c.PostForm("status")))
	flash(c, res.Message)
	redirect(c, ordersPath(c.PostForm("filtro")))
}

// RegisterKitchenRoutes registers the pages for kitchen staff and managers.
func (h *KitchenHandler) RegisterKitchenRoutes(r gin.IRouter) {
	k := r.Group("/", middleware.KitchenOrAdmin())
	{
		k.GET("/cardapioCozinha", h.KitchenMenu)
		k.POST("/cardapioCozinha/:id/disponibilidade", h.ToggleAvailability)
		k.GET("/pedidos", h.Orders)
		k.POST("/pedidos/atualizar", h.RefreshOrders)
		k.POST("/pedidos/:id/status", h.Advance)
	}
}
