// Package kitchen implements the kitchen order board: periodic polling of open orders and the
// forward status transitions kitchen staff may apply.
package kitchen

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/model"
)

const DefaultInterval = 30 * time.Second

const (
	loadFailedMessage = "Falha ao carregar pedidos. Tente novamente."
	advanceFallback   = "Erro ao atualizar o status do pedido. Tente novamente."
)

var (
	ErrOrderNotFound     = errors.New("pedido não encontrado")
	ErrInvalidTransition = errors.New("transição de status não permitida")
	ErrUnknownFilter     = errors.New("filtro desconhecido")
)

// Filter selects which orders the board shows.
type Filter string

const (
	FilterPending   Filter = "PENDENTES"
	FilterPreparing Filter = "EM_PREPARO"
	FilterAll       Filter = "TODOS"
)

var Filters = []Filter{FilterPending, FilterPreparing, FilterAll}

func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "Pendentes"
	case FilterPreparing:
		return "Em preparo"
	case FilterAll:
		return "Todos"
	}
	return string(f)
}

func (f Filter) match(o model.Order) bool {
	switch f {
	case FilterPending:
		return o.Status == model.OrderPending
	case FilterPreparing:
		return o.Status == model.OrderPreparing
	default:
		return o.Status != model.OrderDelivered
	}
}

// API is the backend surface the board needs.
type API interface {
	ListKitchenOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

// Board caches the kitchen orders and polls for new ones while started.
type Board struct {
	api      API
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu          sync.RWMutex
	orders      []model.Order
	err         string
	filter      Filter
	lastUpdated time.Time

	pollMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBoard(api API, interval time.Duration, logger *zap.Logger) *Board {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		api:      api,
		interval: interval,
		timeout:  10 * time.Second,
		logger:   logger,
		filter:   FilterPending,
	}
}

// Start begins polling every interval until ctx is cancelled or Stop is called. Starting an
// already running board does nothing.
func (b *Board) Start(ctx context.Context) {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()
	if b.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done

	ticker := time.NewTicker(b.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, b.timeout)
				_ = b.Refresh(tickCtx)
				cancel()
			}
		}
	}()
	b.logger.Debug("kitchen polling started", zap.Duration("interval", b.interval))
}

// Stop cancels polling and waits for the poller to exit.
func (b *Board) Stop() {
	if done := b.halt(); done != nil {
		<-done
	}
}

// Cancel stops polling without waiting for a poll in flight.
func (b *Board) Cancel() {
	b.halt()
}

// halt cancels polling without waiting. It is safe to call from the poller itself, which happens
// when a poll gets a 401 and the session teardown resets the board.
func (b *Board) halt() <-chan struct{} {
	b.pollMu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.pollMu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	b.logger.Debug("kitchen polling stopped")
	return done
}

// Polling reports whether the poller is running.
func (b *Board) Polling() bool {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()
	return b.cancel != nil
}

// Refresh fetches the open orders. A failure keeps the previous list.
func (b *Board) Refresh(ctx context.Context) error {
	orders, err := b.api.ListKitchenOrders(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if ctx.Err() == nil {
			b.err = loadFailedMessage
			b.logger.Warn("failed to load kitchen orders", zap.Error(err))
		}
		return err
	}
	b.orders = orders
	b.err = ""
	b.lastUpdated = time.Now()
	return nil
}

// Advance moves an order one step forward. Only PENDENTE→EM_PREPARO and EM_PREPARO→PRONTO
// are allowed; anything else is rejected without a request.
func (b *Board) Advance(ctx context.Context, orderID string, to model.OrderStatus) model.Result {
	b.mu.RLock()
	idx := b.indexLocked(orderID)
	var from model.OrderStatus
	if idx >= 0 {
		from = b.orders[idx].Status
	}
	b.mu.RUnlock()

	if idx < 0 {
		return model.Fail(ErrOrderNotFound.Error())
	}
	if !model.KitchenTransition(from, to) {
		return model.Fail(ErrInvalidTransition.Error())
	}

	if err := b.api.UpdateOrderStatus(ctx, orderID, to); err != nil {
		b.logger.Warn("failed to update order status",
			zap.String("order_id", orderID),
			zap.String("status", string(to)),
			zap.Error(err))
		return model.Fail(apiclient.Message(err, advanceFallback))
	}

	b.mu.Lock()
	if i := b.indexLocked(orderID); i >= 0 {
		b.orders[i].Status = to
	}
	b.mu.Unlock()
	return model.Ok()
}

func (b *Board) indexLocked(orderID string) int {
	for i, o := range b.orders {
		if o.ID.String() == orderID {
			return i
		}
	}
	return -1
}

func (b *Board) SetFilter(f Filter) error {
	switch f {
	case FilterPending, FilterPreparing, FilterAll:
	default:
		return ErrUnknownFilter
	}
	b.mu.Lock()
	b.filter = f
	b.mu.Unlock()
	return nil
}

func (b *Board) Filter() Filter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// Orders returns the orders matching the current filter, oldest first.
func (b *Board) Orders() []model.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Order, 0, len(b.orders))
	for _, o := range b.orders {
		if b.filter.match(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Horario.Before(out[j].Horario) })
	return out
}

func (b *Board) Error() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

func (b *Board) LastUpdated() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdated
}

// Reset stops polling and drops the cached orders.
func (b *Board) Reset() {
	b.halt()
	b.mu.Lock()
	b.orders = nil
	b.err = ""
	b.filter = FilterPending
	b.lastUpdated = time.Time{}
	b.mu.Unlock()
}
