package menu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saborconquista/internal/model"
)

type fakeAPI struct {
	items []model.MenuItem
	err   error
	calls int
	query string
}

func (f *fakeAPI) ListMenuItems(context.Context) ([]model.MenuItem, error) {
	f.calls++
	return f.items, f.err
}

func (f *fakeAPI) ListMenuItemsByCategory(_ context.Context, category string) ([]model.MenuItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.MenuItem
	for _, it := range f.items {
		if it.Categoria == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeAPI) SearchMenuItems(_ context.Context, query string) ([]model.MenuItem, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	var out []model.MenuItem
	for _, it := range f.items {
		if strings.Contains(strings.ToLower(it.Nome), strings.ToLower(query)) {
			out = append(out, it)
		}
	}
	return out, nil
}

func sampleItems() []model.MenuItem {
	return []model.MenuItem{
		{ID: "1", Nome: "Calabresa", Categoria: "pizzas", Preco: 4500, Disponibilidade: true},
		{ID: "2", Nome: "X-Burguer", Categoria: "hamburgueres", Preco: 2500, Disponibilidade: true},
	}
}

func TestLoad_ReplacesCacheAndClearsError(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	s := NewStore(api, nil)
	ctx := context.Background()

	require.Error(t, s.Load(ctx))
	assert.Equal(t, LoadFailedMessage, s.Error())

	api.err = nil
	api.items = sampleItems()
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Error())
	assert.Len(t, s.Items(), 2)
	assert.False(t, s.IsLoading())
}

func TestLoad_FailureKeepsCache(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	s := NewStore(api, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	api.items = nil
	api.err = errors.New("timeout")
	require.Error(t, s.Load(ctx))

	assert.Equal(t, sampleItems(), s.Items())
	assert.Equal(t, LoadFailedMessage, s.Error())
	assert.False(t, s.IsLoading())
}

func TestFiltered_FollowsActiveCategory(t *testing.T) {
	s := NewStore(&fakeAPI{items: sampleItems()}, nil)
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.SetActiveCategory("pizzas"))
	got := s.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("1"), got[0].ID)

	require.NoError(t, s.SetActiveCategory("hamburgueres"))
	got = s.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("2"), got[0].ID)

	require.NoError(t, s.SetActiveCategory("bebidas"))
	assert.Empty(t, s.Filtered())
}

func TestSetActiveCategory_RejectsUnknown(t *testing.T) {
	s := NewStore(&fakeAPI{}, nil)
	assert.Equal(t, "pizzas", s.ActiveCategory())

	err := s.SetActiveCategory("saladas")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, "pizzas", s.ActiveCategory())
}

func TestClear(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	s := NewStore(api, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetActiveCategory("bebidas"))

	s.Clear()
	assert.Empty(t, s.Items())
	assert.Equal(t, "pizzas", s.ActiveCategory())

	require.NoError(t, s.EnsureLoaded(ctx))
	assert.Equal(t, 2, api.calls)
	require.NoError(t, s.EnsureLoaded(ctx))
	assert.Equal(t, 2, api.calls)
}

func TestCategories_Static(t *testing.T) {
	s := NewStore(&fakeAPI{}, nil)
	cats := s.Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, "pizzas", cats[0].ID)
	assert.Equal(t, "sobremesas", cats[4].ID)

	cats[0].ID = "mutated"
	assert.Equal(t, "pizzas", s.Categories()[0].ID)
}

func TestFind(t *testing.T) {
	s := NewStore(&fakeAPI{items: sampleItems()}, nil)
	require.NoError(t, s.Load(context.Background()))

	it, ok := s.Find("2")
	assert.True(t, ok)
	assert.Equal(t, "X-Burguer", it.Nome)
	_, ok = s.Find("99")
	assert.False(t, ok)
}

func TestSearch_BypassesCache(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	s := NewStore(api, nil)
	ctx := context.Background()

	_, err := s.Search(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptySearch)

	items, err := s.Search(ctx, " burg ")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "X-Burguer", items[0].Nome)
	assert.Equal(t, "burg", api.query)
	assert.Empty(t, s.Items())

	api.err = errors.New("down")
	_, err = s.Search(ctx, "burg")
	assert.Error(t, err)
}

func TestCategory(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	s := NewStore(api, nil)
	ctx := context.Background()

	_, err := s.Category(ctx, "sushi")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	items, err := s.Category(ctx, model.CategoryPizzas)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Calabresa", items[0].Nome)
	assert.Equal(t, 0, api.calls)
}
