package devapi

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"saborconquista/internal/model"
)

// account is a stored user with its password hash.
type account struct {
	model.User
	PasswordHash string
	Endereco     string
	Ativo        bool
	CreatedAt    time.Time
}

type photo struct {
	ContentType string
	Data        []byte
}

// Repository is the dev backend's in-memory data.
type Repository struct {
	mu        sync.RWMutex
	users     map[string]*account // by email
	items     map[string]*model.MenuItem
	photos    map[string]photo // by "<item>/<n>"
	addresses map[string][]model.Address
	orders    map[string]*model.Order
}

func NewRepository() *Repository {
	return &Repository{
		users:     make(map[string]*account),
		items:     make(map[string]*model.MenuItem),
		photos:    make(map[string]photo),
		addresses: make(map[string][]model.Address),
		orders:    make(map[string]*model.Order),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new account. It reports false when the email is taken.
func (r *Repository) CreateUser(a *account) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(a.Email)
	if _, exists := r.users[key]; exists {
		return false
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	r.users[key] = a
	return true
}

func (r *Repository) FindUserByEmail(email string) *account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.users[normalizeEmail(email)]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (r *Repository) ListItems() []model.MenuItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.MenuItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out
}

func (r *Repository) FindItem(id string) (model.MenuItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return model.MenuItem{}, false
	}
	return *it, true
}

// SaveItem inserts or replaces an item. Photos, when given, replace the item's photos.
func (r *Repository) SaveItem(it model.MenuItem, photos []photo) model.MenuItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it.ID == "" {
		it.ID = model.ID(uuid.NewString())
	}
	id := it.ID.String()
	if prev, ok := r.items[id]; ok && len(photos) == 0 {
		it.Fotos = prev.Fotos
	}
	if len(photos) > 0 {
		for key := range r.photos {
			if strings.HasPrefix(key, id+"/") {
				delete(r.photos, key)
			}
		}
		it.Fotos = make([]string, len(photos))
		for i, p := range photos {
			key := id + "/" + strconv.Itoa(i)
			r.photos[key] = p
			it.Fotos[i] = "/uploads/" + key
		}
	}
	r.items[id] = &it
	return it
}

func (r *Repository) DeleteItem(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	for key := range r.photos {
		if strings.HasPrefix(key, id+"/") {
			delete(r.photos, key)
		}
	}
	return true
}

func (r *Repository) SetAvailability(id string, disponivel bool) (model.MenuItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return model.MenuItem{}, false
	}
	it.Disponibilidade = disponivel
	return *it, true
}

func (r *Repository) Photo(key string) (photo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.photos[key]
	return p, ok
}

func (r *Repository) ListAddresses(customerID string) []model.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Address(nil), r.addresses[customerID]...)
}

// AddAddress stores an address. A customer's first address becomes the default.
func (r *Repository) AddAddress(customerID string, d model.AddressDraft) model.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr := model.Address{
		ID:          model.ID(uuid.NewString()),
		Rua:         d.Rua,
		Numero:      d.Numero,
		Complemento: d.Complemento,
		Bairro:      d.Bairro,
		Cidade:      d.Cidade,
		Estado:      d.Estado,
		Zipcode:     d.Zipcode,
		IsDefault:   len(r.addresses[customerID]) == 0,
	}
	r.addresses[customerID] = append(r.addresses[customerID], addr)
	return addr
}

func (r *Repository) SetDefaultAddress(customerID, addressID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.addresses[customerID]
	found := false
	for i := range addrs {
		if addrs[i].ID.String() == addressID {
			found = true
		}
	}
	if !found {
		return false
	}
	for i := range addrs {
		addrs[i].IsDefault = addrs[i].ID.String() == addressID
	}
	return true
}

// KitchenOrders lists orders not yet delivered, oldest first.
func (r *Repository) KitchenOrders() []model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if o.Status != model.OrderDelivered {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Horario.Before(out[j].Horario) })
	return out
}

func (r *Repository) AddOrder(o model.Order) model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = model.ID(uuid.NewString())
	}
	r.orders[o.ID.String()] = &o
	return o
}

// UpdateOrderStatus applies a single forward step.
func (r *Repository) UpdateOrderStatus(id string, status model.OrderStatus) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return model.Order{}, ErrNotFound
	}
	if !model.ValidStatusTransition(o.Status, status) {
		return model.Order{}, ErrInvalidTransition
	}
	o.Status = status
	return *o, nil
}
