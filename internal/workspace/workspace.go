// Package workspace owns the per-browser state of the web client. Every browser, identified by
// its client-id cookie, gets one Workspace holding its session, menu cache, cart, editor, kitchen
// board and address book, all sharing one backend client bound to the browser's token.
package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/cart"
	"saborconquista/internal/catalog"
	"saborconquista/internal/kitchen"
	"saborconquista/internal/menu"
	"saborconquista/internal/profile"
	"saborconquista/internal/session"
	"saborconquista/internal/storage"
)

// ViewOrders is the only view that keeps the kitchen poller alive.
const ViewOrders = "orders"

// Deps are shared by every workspace.
type Deps struct {
	API          *apiclient.Client
	Store        storage.Store
	Postal       profile.PostalLookup
	PollInterval time.Duration
	Logger       *zap.Logger
}

type Workspace struct {
	ID      string
	API     *apiclient.Client
	Tokens  *storage.TokenStore
	Session *session.Store
	Menu    *menu.Store
	Cart    *cart.Cart
	Catalog *catalog.Editor
	Kitchen *kitchen.Board
	Profile *profile.Book

	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	expired  atomic.Bool
	lastSeen atomic.Int64

	viewMu sync.Mutex
	view   string
	flash  string
}

func newWorkspace(id string, deps Deps) *Workspace {
	logger := deps.Logger.With(zap.String("client_id", id))
	ctx, cancel := context.WithCancel(context.Background())
	tokens := storage.NewTokenStore(deps.Store, id)

	ws := &Workspace{
		ID:     id,
		Tokens: tokens,
		Cart:   cart.New(),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	ws.API = deps.API.WithSession(tokens, ws.expire)
	ws.Session = session.NewStore(ws.API, tokens, logger)
	ws.Menu = menu.NewStore(ws.API, logger)
	ws.Catalog = catalog.NewEditor(ws.API, ws.Menu, logger)
	ws.Kitchen = kitchen.NewBoard(ws.API, deps.PollInterval, logger)
	ws.Profile = profile.NewBook(ws.API, deps.Postal, logger)

	ws.Session.OnLogout(func(context.Context) {
		ws.SetFlash("")
		ws.Menu.Clear()
		ws.Cart.Clear()
		ws.Catalog.Reset()
		ws.Kitchen.Reset()
		ws.Profile.Clear()
	})
	ws.Touch()
	return ws
}

// expire is wired to the backend client: any 401 ends the session and flags the workspace so the
// next page render sends the browser to the login page.
func (w *Workspace) expire(ctx context.Context) {
	w.expired.Store(true)
	w.Session.Expire(ctx)
}

// TakeExpired reports and clears the session-expired flag.
func (w *Workspace) TakeExpired() bool {
	return w.expired.Swap(false)
}

// Enter records the view being rendered. Leaving the orders view stops kitchen polling.
func (w *Workspace) Enter(view string) {
	w.viewMu.Lock()
	w.view = view
	w.viewMu.Unlock()
	if view != ViewOrders {
		w.Kitchen.Cancel()
	}
}

// View is the last view rendered.
func (w *Workspace) View() string {
	w.viewMu.Lock()
	defer w.viewMu.Unlock()
	return w.view
}

// SetFlash keeps a notice for the next rendered page.
func (w *Workspace) SetFlash(msg string) {
	w.viewMu.Lock()
	w.flash = msg
	w.viewMu.Unlock()
}

// TakeFlash returns and clears the pending notice.
func (w *Workspace) TakeFlash() string {
	w.viewMu.Lock()
	defer w.viewMu.Unlock()
	msg := w.flash
	w.flash = ""
	return msg
}

// StartKitchenPolling ties the poller to the workspace lifetime.
func (w *Workspace) StartKitchenPolling() {
	w.Kitchen.Start(w.ctx)
}

func (w *Workspace) Touch() {
	w.lastSeen.Store(time.Now().UnixNano())
}

func (w *Workspace) LastSeen() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}

// Close stops background work. The durable token is kept.
func (w *Workspace) Close() {
	w.Kitchen.Stop()
	w.cancel()
}
