package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MenuItem is a catalog entry. Preco is in centavos (R$ 20,50 = 2050).
type MenuItem struct {
	ID              ID       `json:"id"`
	Nome            string   `json:"nome"`
	Descricao       string   `json:"descricao"`
	Preco           int64    `json:"preco"`
	Categoria       string   `json:"categoria"`
	Disponibilidade bool     `json:"disponibilidade"`
	Fotos           []string `json:"fotos,omitempty"`
}

// Category is a client-defined filter tag for the menu.
type Category struct {
	ID   string
	Name string
}

const (
	CategoryPizzas       = "pizzas"
	CategoryHamburgueres = "hamburgueres"
	CategoryPorcoes      = "porcoes"
	CategoryBebidas      = "bebidas"
	CategorySobremesas   = "sobremesas"
)

// Categories is the fixed list of menu filters. It is never derived from server data.
var Categories = []Category{
	{ID: CategoryPizzas, Name: "Pizzas"},
	{ID: CategoryHamburgueres, Name: "Hambúrgueres"},
	{ID: CategoryPorcoes, Name: "Porções"},
	{ID: CategoryBebidas, Name: "Bebidas"},
	{ID: CategorySobremesas, Name: "Sobremesas"},
}

// LookupCategory returns the category with the given id.
func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FormatPrice renders centavos as "R$ 20,50".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}

// FormatPriceInput renders centavos the way the price field expects them ("20.50").
func FormatPriceInput(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// ParsePrice converts a price typed in reais ("20,50", "20.5", "20") to centavos.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return 0, fmt.Errorf("preço obrigatório")
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("preço inválido: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("preço não pode ser negativo")
	}
	return int64(math.Round(f * 100)), nil
}

// Photo is an image attached to a menu item form before upload.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MenuItemInput is the multipart payload for creating or updating a menu item.
type MenuItemInput struct {
	Nome            string
	Descricao       string
	Preco           int64
	Categoria       string
	Disponibilidade bool
	Fotos           []Photo
}
