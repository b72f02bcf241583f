package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var activeWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "webclient_workspaces_active",
	Help: "Number of browser workspaces held in memory.",
})

// Registry maps client ids to workspaces and evicts idle ones.
type Registry struct {
	deps    Deps
	idleTTL time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{
		deps:    deps,
		idleTTL: idleTTL,
		logger:  deps.Logger,
		items:   make(map[string]*Workspace),
	}
}

// Get returns the workspace for id, creating it on first use. A fresh workspace never starts
// with a token that has no user behind it.
func (r *Registry) Get(ctx context.Context, id string) *Workspace {
	r.mu.Lock()
	ws, ok := r.items[id]
	if !ok {
		ws = newWorkspace(id, r.deps)
		r.items[id] = ws
		activeWorkspaces.Inc()
	}
	r.mu.Unlock()

	if !ok {
		dropped, err := ws.Session.Reconcile(ctx)
		switch {
		case err != nil:
			r.logger.Error("failed to reconcile stored token", zap.String("client_id", id), zap.Error(err))
		case dropped:
			r.logger.Info("dropped token without session", zap.String("client_id", id))
		}
	}
	ws.Touch()
	return ws
}

// Lookup returns an existing workspace without creating one.
func (r *Registry) Lookup(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[id]
	return ws, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Evict closes and forgets workspaces not seen since now minus the idle TTL.
func (r *Registry) Evict(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	var stale []*Workspace
	r.mu.Lock()
	for id, ws := range r.items {
		if now.Sub(ws.LastSeen()) > r.idleTTL {
			stale = append(stale, ws)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range stale {
		ws.Close()
		activeWorkspaces.Dec()
	}
	if len(stale) > 0 {
		r.logger.Info("evicted idle workspaces", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run evicts idle workspaces periodically until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	if r.idleTTL <= 0 {
		return
	}
	interval := r.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.Evict(now)
			}
		}
	}()
}

// Close shuts every workspace down.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, ws := range items {
		ws.Close()
		activeWorkspaces.Dec()
	}
}
