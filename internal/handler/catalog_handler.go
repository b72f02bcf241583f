package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saborconquista/internal/catalog"
	"saborconquista/internal/middleware"
	"saborconquista/internal/model"
	"saborconquista/internal/web"
)

const managerPath = "/cardapioGerente"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CatalogHandler serves the manager's catalog editor.
type CatalogHandler struct {
	logger *zap.Logger
}

func NewCatalogHandler(logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{logger: logger}
}

type managerData struct {
	Editor     catalog.View
	Items      []model.MenuItem
	Categories []model.Category
	LoadError  string
}

func (h *CatalogHandler) Manager(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	_ = ws.Menu.EnsureLoaded(c.Request.Context())
	render(c, http.StatusOK, viewManager, web.Page{
		Title: "Gerenciar cardápio",
		Data: managerData{
			Editor:     ws.Catalog.View(),
			Items:      ws.Menu.Items(),
			Categories: ws.Menu.Categories(),
			LoadError:  ws.Menu.Error(),
		},
	})
}

func (h *CatalogHandler) New(c *gin.Context) {
	if err := middleware.CurrentWorkspace(c).Catalog.New(); err != nil {
		flash(c, err.Error())
	}
	redirect(c, managerPath)
}

func (h *CatalogHandler) Edit(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	item, ok := ws.Menu.Find(c.Param("id"))
	if !ok {
		flash(c, "Item não encontrado")
	} else if err := ws.Catalog.Edit(item); err != nil {
		flash(c, err.Error())
	}
	redirect(c, managerPath)
}

func (h *CatalogHandler) Cancel(c *gin.Context) {
	middleware.CurrentWorkspace(c).Catalog.Cancel()
	redirect(c, managerPath)
}

// readPhoto reads one uploaded file. Anything past the size limit is cut so the editor rejects it.
func readPhoto(fh *multipart.FileHeader) (model.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Photo{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, catalog.MaxPhotoSize+1))
	if err != nil {
		return model.Photo{}, err
	}
	return model.Photo{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// Save attaches the uploaded photos to the form, then submits it. The editor keeps the typed
// values and the error when the save fails.
func (h *CatalogHandler) Save(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	form := catalog.Form{
		ID:              c.PostForm("id"),
		Nome:            c.PostForm("nome"),
		Descricao:       c.PostForm("descricao"),
		Preco:           c.PostForm("preco"),
		Categoria:       c.PostForm("categoria"),
		Disponibilidade: c.PostForm("disponibilidade") == "true",
	}

	var rejected []string
	if mf, err := c.MultipartForm(); err == nil {
		for _, fh := range mf.File["fotos"] {
			if fh.Size == 0 && fh.Filename == "" {
				continue
			}
			p, err := readPhoto(fh)
			if err == nil {
				err = ws.Catalog.AddPhoto(p)
			}
			if err != nil {
				rejected = append(rejected, fmt.Sprintf("%s: %v", fh.Filename, err))
			}
		}
	}
	if len(rejected) > 0 {
		flash(c, "Fotos recusadas: "+strings.Join(rejected, "; "))
	}

	res := ws.Catalog.Submit(c.Request.Context(), form)
	if !res.Success {
		h.logger.Debug("menu item not saved", zap.String("message", res.Message))
	}
	redirect(c, managerPath)
}

func (h *CatalogHandler) RemovePhoto(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err == nil {
		middleware.CurrentWorkspace(c).Catalog.RemovePhoto(i)
	}
	redirect(c, managerPath)
}

func (h *CatalogHandler) RequestDelete(c *gin.Context) {
	middleware.CurrentWorkspace(c).Catalog.RequestDelete(c.Param("id"))
	redirect(c, managerPath)
}

func (h *CatalogHandler) ConfirmDelete(c *gin.Context) {
	middleware.CurrentWorkspace(c).Catalog.ConfirmDelete(c.Request.Context())
	redirect(c, managerPath)
}

func (h *CatalogHandler) CancelDelete(c *gin.Context) {
	middleware.CurrentWorkspace(c).Catalog.CancelDelete()
	redirect(c, managerPath)
}

func (h *CatalogHandler) ToggleAvailability(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	disponivel, err := strconv.ParseBool(c.PostForm("disponibilidade"))
	if err != nil {
		flash(c, "Valor de disponibilidade inválido")
		redirect(c, managerPath)
		return
	}
	res := ws.Catalog.SetAvailability(c.Request.Context(), c.Param("id"), disponivel)
	flash(c, res.Message)
	redirect(c, managerPath)
}

// Export downloads the cached catalog as a spreadsheet.
func (h *CatalogHandler) Export(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if err := ws.Menu.EnsureLoaded(c.Request.Context()); err != nil {
		flash(c, ws.Menu.Error())
		redirect(c, managerPath)
		return
	}
	f, err := catalog.Export(ws.Menu.Items())
	if err != nil {
		h.logger.Error("failed to build catalog export", zap.Error(err))
		flash(c, "Falha ao exportar o cardápio")
		redirect(c, managerPath)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("cardapio-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("failed to write catalog export", zap.Error(err))
	}
}

// RegisterCatalogRoutes registers the manager pages.
func (h *CatalogHandler) RegisterCatalogRoutes(r gin.IRouter) {
	m := r.Group(managerPath, middleware.AdminOnly())
	{
		m.GET("", h.Manager)
		m.GET("/exportar", h.Export)
		m.POST("/novo", h.New)
		m.POST("/salvar", h.Save)
		m.POST("/cancelar", h.Cancel)
		m.POST("/fotos/:index/remover", h.RemovePhoto)
		m.POST("/excluir/confirmar", h.ConfirmDelete)
		m.POST("/excluir/cancelar", h.CancelDelete)
		m.GET("/:id/editar", h.Edit)
		m.POST("/:id/excluir", h.RequestDelete)
		m.POST("/:id/disponibilidade", h.ToggleAvailability)
	}
}
