// Package menu caches the restaurant catalog for one browser and derives the category view.
package menu

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"saborconquista/internal/model"
)

// LoadFailedMessage is shown when the catalog could not be fetched.
const LoadFailedMessage = "Falha ao carregar o cardápio. Tente novamente."

var (
	ErrUnknownCategory = errors.New("categoria desconhecida")
	ErrEmptySearch     = errors.New("informe um termo de busca")
)

// API lists the catalog.
type API interface {
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	ListMenuItemsByCategory(ctx context.Context, category string) ([]model.MenuItem, error)
	SearchMenuItems(ctx context.Context, query string) ([]model.MenuItem, error)
}

// Store is the menu cache. A failed load never empties it.
type Store struct {
	api    API
	logger *zap.Logger

	mu             sync.RWMutex
	items          []model.MenuItem
	loaded         bool
	isLoading      bool
	err            string
	activeCategory string
}

func NewStore(api API, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:            api,
		logger:         logger,
		activeCategory: model.Categories[0].ID,
	}
}

// Load fetches the full catalog. On success the cache is replaced and the error cleared; on
// failure the error message is set and the previous cache is kept.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.isLoading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.mu.Unlock()
	}()

	items, err := s.api.ListMenuItems(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = LoadFailedMessage
		s.logger.Warn("failed to load menu", zap.Error(err), zap.Int("cached_items", len(s.items)))
		return err
	}
	s.items = items
	s.loaded = true
	s.err = ""
	return nil
}

// EnsureLoaded loads the catalog only if it has never been loaded successfully.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

// Search asks the backend for items whose name contains text. Results do not touch the cache.
func (s *Store) Search(ctx context.Context, text string) ([]model.MenuItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySearch
	}
	items, err := s.api.SearchMenuItems(ctx, text)
	if err != nil {
		s.logger.Warn("menu search failed", zap.String("query", text), zap.Error(err))
		return nil, err
	}
	return items, nil
}

// Category fetches one category straight from the backend, bypassing the cache.
func (s *Store) Category(ctx context.Context, category string) ([]model.MenuItem, error) {
	if _, ok := model.LookupCategory(category); !ok {
		return nil, ErrUnknownCategory
	}
	items, err := s.api.ListMenuItemsByCategory(ctx, category)
	if err != nil {
		s.logger.Warn("failed to load category", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	return items, nil
}

// Clear empties the cache and resets the filter. Used when the session ends.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loaded = false
	s.err = ""
	s.activeCategory = model.Categories[0].ID
}

// SetActiveCategory changes the selected filter. Unknown categories leave the state unchanged.
func (s *Store) SetActiveCategory(category string) error {
	if _, ok := model.LookupCategory(category); !ok {
		return ErrUnknownCategory
	}
	s.mu.Lock()
	s.activeCategory = category
	s.mu.Unlock()
	return nil
}

func (s *Store) ActiveCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCategory
}

// Filtered returns the cached items whose categoria equals the active category.
func (s *Store) Filtered() []model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MenuItem, 0, len(s.items))
	for _, it := range s.items {
		if it.Categoria == s.activeCategory {
			out = append(out, it)
		}
	}
	return out
}

// Items returns a copy of the whole cache.
func (s *Store) Items() []model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.MenuItem(nil), s.items...)
}

// Find returns the cached item with the given id.
func (s *Store) Find(id string) (model.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID.String() == id {
			return it, true
		}
	}
	return model.MenuItem{}, false
}

func (s *Store) Categories() []model.Category {
	return append([]model.Category(nil), model.Categories...)
}

func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}
