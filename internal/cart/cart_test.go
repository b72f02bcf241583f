package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saborconquista/internal/model"
)

var (
	pizza = model.MenuItem{ID: "1", Nome: "Calabresa", Preco: 4550, Categoria: "pizzas", Disponibilidade: true}
	suco  = model.MenuItem{ID: "2", Nome: "Suco", Preco: 800, Categoria: "bebidas", Disponibilidade: true}
)

func TestCart_AddMergesAndTotals(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(pizza, 1))
	require.NoError(t, c.Add(suco, 2))
	require.NoError(t, c.Add(pizza, 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantidade)
	assert.Equal(t, int64(2*4550+2*800), c.Total())
	assert.Equal(t, 4, c.Count())
}

func TestCart_RejectsUnavailableAndBadQuantities(t *testing.T) {
	c := New()
	off := pizza
	off.Disponibilidade = false

	assert.ErrorIs(t, c.Add(off, 1), ErrItemUnavailable)
	assert.ErrorIs(t, c.Add(pizza, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(pizza, MaxQuantity+1), ErrInvalidQuantity)
	require.NoError(t, c.Add(pizza, MaxQuantity))
	assert.ErrorIs(t, c.Add(pizza, 1), ErrInvalidQuantity)
	assert.Equal(t, MaxQuantity, c.Count())
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(pizza, 1))
	require.NoError(t, c.Add(suco, 1))

	require.NoError(t, c.SetQuantity(suco.ID, 3))
	assert.Equal(t, int64(4550+3*800), c.Total())

	require.NoError(t, c.Remove(pizza.ID))
	assert.Len(t, c.Lines(), 1)
	assert.ErrorIs(t, c.Remove(pizza.ID), ErrItemNotInCart)
	assert.ErrorIs(t, c.SetQuantity(suco.ID, -1), ErrInvalidQuantity)

	c.Clear()
	assert.Empty(t, c.Lines())
	assert.Zero(t, c.Total())
}
