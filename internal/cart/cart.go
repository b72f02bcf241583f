// Package cart keeps the items a customer picked from the menu.
package cart

import (
	"errors"
	"sync"

	"saborconquista/internal/model"
)

var (
	ErrItemUnavailable = errors.New("item indisponível no momento")
	ErrInvalidQuantity = errors.New("quantidade inválida")
	ErrItemNotInCart   = errors.New("item não está no carrinho")
)

const MaxQuantity = 99

// Line is one item and how many of it.
type Line struct {
	Item       model.MenuItem
	Quantidade int
}

// Subtotal in centavos.
func (l Line) Subtotal() int64 { return l.Item.Preco * int64(l.Quantidade) }

// Cart is safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart { return &Cart{} }

// Add puts qty units of item in the cart, merging with an existing line.
func (c *Cart) Add(item model.MenuItem, qty int) error {
	if !item.Disponibilidade {
		return ErrItemUnavailable
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			if c.lines[i].Quantidade+qty > MaxQuantity {
				return ErrInvalidQuantity
			}
			c.lines[i].Quantidade += qty
			c.lines[i].Item = item
			return nil
		}
	}
	if qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	c.lines = append(c.lines, Line{Item: item, Quantidade: qty})
	return nil
}

// SetQuantity changes a line's quantity; zero removes it.
func (c *Cart) SetQuantity(id model.ID, qty int) error {
	if qty < 0 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Item.ID == id {
			if qty == 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantidade = qty
			}
			return nil
		}
	}
	return ErrItemNotInCart
}

func (c *Cart) Remove(id model.ID) error { return c.SetQuantity(id, 0) }

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Total in centavos.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantidade
	}
	return n
}
