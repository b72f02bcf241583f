// Package profile manages a customer's delivery addresses.
package profile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/model"
	"saborconquista/internal/postal"
)

const (
	loadFailed       = "Erro ao carregar endereços"
	addFailed        = "Erro ao cadastrar endereço. Tente novamente."
	setDefaultFailed = "Erro ao definir endereço padrão"
)

// API is the address part of the backend.
type API interface {
	ListAddresses(ctx context.Context, customerID string) ([]model.Address, error)
	CreateAddress(ctx context.Context, customerID string, draft model.AddressDraft) (*model.Address, error)
	SetDefaultAddress(ctx context.Context, customerID, addressID string) error
}

// PostalLookup resolves a CEP into street data.
type PostalLookup interface {
	Lookup(ctx context.Context, cep string) (*postal.Result, error)
}

// Book is the address list and new-address form of one customer.
type Book struct {
	api    API
	postal PostalLookup
	logger *zap.Logger

	mu        sync.RWMutex
	addresses []model.Address
	draft     model.AddressDraft
	err       string
	isLoading bool
}

func NewBook(api API, lookup PostalLookup, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{api: api, postal: lookup, logger: logger}
}

func (b *Book) setLoading(v bool) {
	b.mu.Lock()
	b.isLoading = v
	b.mu.Unlock()
}

// Load fetches the customer's addresses.
func (b *Book) Load(ctx context.Context, customerID string) error {
	b.setLoading(true)
	defer b.setLoading(false)

	addrs, err := b.api.ListAddresses(ctx, customerID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.err = loadFailed
		b.logger.Warn("failed to load addresses", zap.String("customer_id", customerID), zap.Error(err))
		return err
	}
	b.addresses = addrs
	b.err = ""
	return nil
}

// Add validates and creates an address. On success the form is cleared; on failure the typed
// values stay in the form.
func (b *Book) Add(ctx context.Context, customerID string, draft model.AddressDraft) model.Result {
	b.mu.Lock()
	b.draft = draft
	b.mu.Unlock()

	if err := draft.Validate(); err != nil {
		b.mu.Lock()
		b.err = err.Error()
		b.mu.Unlock()
		return model.Fail(err.Error())
	}

	b.setLoading(true)
	defer b.setLoading(false)

	addr, err := b.api.CreateAddress(ctx, customerID, draft)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		msg := apiclient.Message(err, addFailed)
		b.err = msg
		b.logger.Warn("failed to create address", zap.String("customer_id", customerID), zap.Error(err))
		return model.Fail(msg)
	}
	if addr != nil {
		b.addresses = append(b.addresses, *addr)
	}
	b.draft = model.AddressDraft{}
	b.err = ""
	return model.Ok()
}

// SetDefault marks addressID as default and reloads the list.
func (b *Book) SetDefault(ctx context.Context, customerID, addressID string) model.Result {
	b.setLoading(true)
	defer b.setLoading(false)

	if err := b.api.SetDefaultAddress(ctx, customerID, addressID); err != nil {
		b.mu.Lock()
		b.err = setDefaultFailed
		b.mu.Unlock()
		b.logger.Warn("failed to set default address", zap.String("address_id", addressID), zap.Error(err))
		return model.Fail(setDefaultFailed)
	}

	addrs, err := b.api.ListAddresses(ctx, customerID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.err = setDefaultFailed
		return model.Fail(setDefaultFailed)
	}
	b.addresses = addrs
	b.err = ""
	return model.Ok()
}

// FillFromCEP completes street, district, city and state from the draft's CEP. Lookups only
// happen for 8-digit codes; a failed lookup leaves the draft as typed.
func (b *Book) FillFromCEP(ctx context.Context, draft model.AddressDraft) model.AddressDraft {
	defer func() {
		b.mu.Lock()
		b.draft = draft
		b.mu.Unlock()
	}()

	cep := model.CEPDigits(draft.Zipcode)
	if len(cep) != 8 || b.postal == nil {
		return draft
	}
	res, err := b.postal.Lookup(ctx, cep)
	if err != nil {
		b.logger.Info("CEP lookup failed", zap.String("cep", cep), zap.Error(err))
		return draft
	}
	draft.Rua = res.Logradouro
	draft.Bairro = res.Bairro
	draft.Cidade = res.Localidade
	draft.Estado = res.UF
	draft.Zipcode = cep
	return draft
}

func (b *Book) Addresses() []model.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Address(nil), b.addresses...)
}

func (b *Book) Draft() model.AddressDraft {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.draft
}

func (b *Book) Error() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

func (b *Book) IsLoading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isLoading
}

// Clear drops everything. Used when the session ends.
func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = nil
	b.draft = model.AddressDraft{}
	b.err = ""
}
