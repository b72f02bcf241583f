// Package catalog implements the manager's menu item editor.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/model"
)

// State of the single-item edit form.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

var (
	ErrSubmitInProgress = errors.New("aguarde, a operação anterior ainda está em andamento")
	ErrNoPendingDelete  = errors.New("nenhum item selecionado para exclusão")
	ErrMissingName      = errors.New("o nome do item é obrigatório")
	ErrUnknownCategory  = errors.New("categoria inválida")
)

const (
	saveFallback   = "Erro ao salvar item. Tente novamente."
	deleteFallback = "Erro ao excluir item. Tente novamente."
	toggleFallback = "Erro ao atualizar disponibilidade. Tente novamente."
)

// API is the backend surface the editor needs.
type API interface {
	CreateMenuItem(ctx context.Context, in model.MenuItemInput) (*model.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, in model.MenuItemInput) (*model.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	SetMenuItemAvailability(ctx context.Context, id string, disponivel bool) (*model.MenuItem, error)
}

// Reloader refreshes the catalog list after a change.
type Reloader interface {
	Load(ctx context.Context) error
}

// Form holds the values as typed by the manager. Preco is in reais.
type Form struct {
	ID              string
	Nome            string
	Descricao       string
	Preco           string
	Categoria       string
	Disponibilidade bool
}

// FormFromItem pre-fills a form from an existing item.
func FormFromItem(it model.MenuItem) Form {
	return Form{
		ID:              it.ID.String(),
		Nome:            it.Nome,
		Descricao:       it.Descricao,
		Preco:           model.FormatPriceInput(it.Preco),
		Categoria:       it.Categoria,
		Disponibilidade: it.Disponibilidade,
	}
}

// Input converts the form into the payload sent to the backend.
func (f Form) Input(photos []model.Photo) (model.MenuItemInput, error) {
	nome := strings.TrimSpace(f.Nome)
	if nome == "" {
		return model.MenuItemInput{}, ErrMissingName
	}
	preco, err := model.ParsePrice(f.Preco)
	if err != nil {
		return model.MenuItemInput{}, err
	}
	if _, ok := model.LookupCategory(f.Categoria); !ok {
		return model.MenuItemInput{}, ErrUnknownCategory
	}
	return model.MenuItemInput{
		Nome:            nome,
		Descricao:       strings.TrimSpace(f.Descricao),
		Preco:           preco,
		Categoria:       f.Categoria,
		Disponibilidade: f.Disponibilidade,
		Fotos:           photos,
	}, nil
}

// View is a read-only snapshot for rendering.
type View struct {
	State         State
	Form          Form
	Photos        []string
	Error         string
	Notice        string
	PendingDelete string
}

// Editor is the idle → editing → submitting state machine over one edit form.
type Editor struct {
	api    API
	list   Reloader
	logger *zap.Logger

	mu            sync.Mutex
	state         State
	form          Form
	photos        []model.Photo
	err           string
	notice        string
	pendingDelete string
}

func NewEditor(api API, list Reloader, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		api:    api,
		list:   list,
		logger: logger,
		form:   Form{Categoria: model.Categories[0].ID, Disponibilidade: true},
	}
}

// View returns a snapshot of the editor.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, len(e.photos))
	for i, p := range e.photos {
		names[i] = p.Filename
	}
	return View{
		State:         e.state,
		Form:          e.form,
		Photos:        names,
		Error:         e.err,
		Notice:        e.notice,
		PendingDelete: e.pendingDelete,
	}
}

// New opens an empty form for a new item.
func (e *Editor) New() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	e.state = StateEditing
	e.form = Form{Categoria: model.Categories[0].ID, Disponibilidade: true}
	e.photos = nil
	e.err, e.notice = "", ""
	return nil
}

// Edit opens the form pre-filled from item.
func (e *Editor) Edit(item model.MenuItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	e.state = StateEditing
	e.form = FormFromItem(item)
	e.photos = nil
	e.err, e.notice = "", ""
	return nil
}

// Cancel discards the form and returns to idle.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return
	}
	e.resetLocked()
}

// Reset drops everything, including a pending delete. Used when the session ends.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.pendingDelete = ""
	e.notice = ""
}

func (e *Editor) resetLocked() {
	e.state = StateIdle
	e.form = Form{Categoria: model.Categories[0].ID, Disponibilidade: true}
	e.photos = nil
	e.err = ""
}

// AddPhoto attaches a photo to the form. A sixth photo is rejected and the list is unchanged.
func (e *Editor) AddPhoto(p model.Photo) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	if len(e.photos) >= MaxPhotos {
		e.logger.Warn("photo rejected", zap.String("file", p.Filename), zap.Error(ErrTooManyPhotos))
		return ErrTooManyPhotos
	}
	p, err := validatePhoto(p)
	if err != nil {
		return err
	}
	if e.state == StateIdle {
		e.state = StateEditing
	}
	e.photos = append(e.photos, p)
	return nil
}

// RemovePhoto drops the photo at index i.
func (e *Editor) RemovePhoto(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting || i < 0 || i >= len(e.photos) {
		return
	}
	e.photos = append(e.photos[:i:i], e.photos[i+1:]...)
}

// Submit saves the form. On success the form is cleared and the list reloaded; on failure the
// error is set and the typed values are retained. A submit while another is in flight is
// rejected.
func (e *Editor) Submit(ctx context.Context, form Form) model.Result {
	e.mu.Lock()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		return model.Fail(ErrSubmitInProgress.Error())
	}
	e.form = form
	e.notice = ""
	in, err := form.Input(append([]model.Photo(nil), e.photos...))
	if err != nil {
		e.state = StateEditing
		e.err = err.Error()
		e.mu.Unlock()
		return model.Fail(err.Error())
	}
	e.state = StateSubmitting
	e.err = ""
	e.mu.Unlock()

	var saved *model.MenuItem
	if form.ID == "" {
		saved, err = e.api.CreateMenuItem(ctx, in)
	} else {
		saved, err = e.api.UpdateMenuItem(ctx, form.ID, in)
	}

	e.mu.Lock()
	if err != nil {
		msg := apiclient.Message(err, saveFallback)
		e.state = StateEditing
		e.err = msg
		e.mu.Unlock()
		e.logger.Warn("failed to save menu item", zap.String("id", form.ID), zap.Error(err))
		return model.Fail(msg)
	}
	e.resetLocked()
	name := in.Nome
	if saved != nil && saved.Nome != "" {
		name = saved.Nome
	}
	e.notice = fmt.Sprintf("Item %q salvo com sucesso.", name)
	e.mu.Unlock()

	e.reload(ctx)
	return model.Ok()
}

// RequestDelete asks for confirmation before deleting id. Nothing is sent yet.
func (e *Editor) RequestDelete(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingDelete = id
}

// CancelDelete drops a pending delete.
func (e *Editor) CancelDelete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingDelete = ""
}

// ConfirmDelete deletes the item awaiting confirmation, then reloads the list.
func (e *Editor) ConfirmDelete(ctx context.Context) model.Result {
	e.mu.Lock()
	id := e.pendingDelete
	if id == "" {
		e.mu.Unlock()
		return model.Fail(ErrNoPendingDelete.Error())
	}
	if e.state == StateSubmitting {
		e.mu.Unlock()
		return model.Fail(ErrSubmitInProgress.Error())
	}
	prev := e.state
	e.state = StateSubmitting
	e.mu.Unlock()

	err := e.api.DeleteMenuItem(ctx, id)

	e.mu.Lock()
	e.state = prev
	e.pendingDelete = ""
	if err != nil {
		msg := apiclient.Message(err, deleteFallback)
		e.err = msg
		e.mu.Unlock()
		e.logger.Warn("failed to delete menu item", zap.String("id", id), zap.Error(err))
		return model.Fail(msg)
	}
	if e.form.ID == id {
		e.resetLocked()
	}
	e.notice = "Item excluído com sucesso."
	e.mu.Unlock()

	e.reload(ctx)
	return model.Ok()
}

// SetAvailability toggles an item's availability, then reloads the list.
func (e *Editor) SetAvailability(ctx context.Context, id string, disponivel bool) model.Result {
	if _, err := e.api.SetMenuItemAvailability(ctx, id, disponivel); err != nil {
		e.logger.Warn("failed to toggle availability", zap.String("id", id), zap.Error(err))
		return model.Fail(apiclient.Message(err, toggleFallback))
	}
	e.reload(ctx)
	return model.Ok()
}

func (e *Editor) reload(ctx context.Context) {
	if e.list == nil {
		return
	}
	if err := e.list.Load(ctx); err != nil {
		e.logger.Warn("failed to reload menu after change", zap.Error(err))
	}
}
