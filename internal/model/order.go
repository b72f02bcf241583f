package model

import "time"

// OrderStatus is the linear lifecycle of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDENTE"
	OrderPreparing OrderStatus = "EM_PREPARO"
	OrderReady     OrderStatus = "PRONTO"
	OrderDelivered OrderStatus = "ENTREGUE"
)

// Label is the Portuguese name shown on the board.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Pendente"
	case OrderPreparing:
		return "Em Preparo"
	case OrderReady:
		return "Pronto"
	case OrderDelivered:
		return "Entregue"
	}
	return string(s)
}

// NextStatus returns the status that follows s, if any.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	switch s {
	case OrderPending:
		return OrderPreparing, true
	case OrderPreparing:
		return OrderReady, true
	case OrderReady:
		return OrderDelivered, true
	}
	return "", false
}

// ValidStatusTransition reports whether from -> to is a single forward step.
func ValidStatusTransition(from, to OrderStatus) bool {
	next, ok := NextStatus(from)
	return ok && next == to
}

// KitchenTransition reports whether kitchen staff may move an order from -> to.
// Only PENDENTE -> EM_PREPARO and EM_PREPARO -> PRONTO are exposed to the kitchen.
func KitchenTransition(from, to OrderStatus) bool {
	return ValidStatusTransition(from, to) && to != OrderDelivered
}

// OrderType is how the order leaves the restaurant.
type OrderType string

const (
	OrderDelivery OrderType = "DELIVERY"
	OrderTakeout  OrderType = "TAKEOUT"
)

// OrderItem is a line of an order.
type OrderItem struct {
	ID         ID     `json:"id"`
	Nome       string `json:"nome"`
	Quantidade int    `json:"quantidade"`
	Observacao string `json:"observacao,omitempty"`
}

// Order is a kitchen order.
type Order struct {
	ID      ID          `json:"id"`
	Numero  string      `json:"numero"`
	Itens   []OrderItem `json:"itens"`
	Status  OrderStatus `json:"status"`
	Horario time.Time   `json:"horario"`
	Tipo    OrderType   `json:"tipo"`
}
