package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"saborconquista/internal/apiclient"
	"saborconquista/internal/devapi"
	"saborconquista/internal/middleware"
	"saborconquista/internal/model"
	"saborconquista/internal/postal"
	"saborconquista/internal/storage"
	"saborconquista/internal/web"
	"saborconquista/internal/workspace"
)

const (
	adminEmail    = "gerente@sabor.com"
	adminPassword = "gerente123"
)

type app struct {
	t       *testing.T
	web     *httptest.Server
	backend *httptest.Server
	reg     *workspace.Registry
}

// browser is one client with its own cookie jar. Redirects are not followed.
type browser struct {
	app    *app
	client *http.Client
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := devapi.NewServer(devapi.NewRepository(), devapi.NewTokenIssuer("test-secret", 1), zap.NewNop())
	require.NoError(t, api.Seed(adminEmail, adminPassword))
	backend := httptest.NewServer(api.Router())
	t.Cleanup(backend.Close)

	viacep := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"cep":"01001-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`)
	}))
	t.Cleanup(viacep.Close)

	reg := workspace.NewRegistry(workspace.Deps{
		API:          apiclient.New(backend.URL, 5*time.Second, zap.NewNop()),
		Store:        storage.NewMemoryStore(),
		Postal:       postal.NewClient(viacep.URL, 5*time.Second, zap.NewNop()),
		PollInterval: time.Hour,
		Logger:       zap.NewNop(),
	}, time.Hour)
	t.Cleanup(reg.Close)

	renderer, err := web.New()
	require.NoError(t, err)
	router := NewRouter(reg, renderer, RouterConfig{PhotoBase: backend.URL, PollInterval: 30 * time.Second}, zap.NewNop())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &app{t: t, web: srv, backend: backend, reg: reg}
}

func (a *app) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &browser{app: a, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type response struct {
	Status   int
	Location string
	Body     string
	Header   http.Header
}

func (b *browser) do(req *http.Request) response {
	b.app.t.Helper()
	res, err := b.client.Do(req)
	require.NoError(b.app.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.app.t, err)
	return response{Status: res.StatusCode, Location: res.Header.Get("Location"), Body: string(body), Header: res.Header}
}

func (b *browser) get(path string) response {
	req, err := http.NewRequest(http.MethodGet, b.app.web.URL+path, nil)
	require.NoError(b.app.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) response {
	req, err := http.NewRequest(http.MethodPost, b.app.web.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email, senha string) {
	b.app.t.Helper()
	res := b.post("/login", url.Values{"email": {email}, "senha": {senha}})
	require.Equal(b.app.t, http.StatusSeeOther, res.Status, res.Body)
	require.Equal(b.app.t, "/menu", res.Location)
}

func (b *browser) register(nome, email, role string) {
	b.app.t.Helper()
	res := b.post("/registro", url.Values{
		"nome": {nome}, "email": {email}, "telefone": {"11999990000"},
		"senha": {"segredo"}, "confirmarSenha": {"segredo"}, "role": {role},
	})
	require.Equal(b.app.t, http.StatusSeeOther, res.Status, res.Body)
}

// workspace returns the server-side state of this browser.
func (b *browser) workspace() *workspace.Workspace {
	b.app.t.Helper()
	u, _ := url.Parse(b.app.web.URL)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == middleware.ClientCookie {
			ws, ok := b.app.reg.Lookup(c.Value)
			require.True(b.app.t, ok)
			return ws
		}
	}
	b.app.t.Fatal("no client cookie")
	return nil
}

func TestPages_GuestIsSentToLogin(t *testing.T) {
	b := newApp(t).browser()

	for _, path := range []string{"/menu", "/carrinhoDeCompras", "/perfil", "/cardapioCozinha", "/pedidos", "/cardapioGerente"} {
		res := b.get(path)
		assert.Equal(t, http.StatusSeeOther, res.Status, path)
		assert.Equal(t, "/login", res.Location, path)
	}

	res := b.get("/login")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, `action="/login"`)

	res = b.get("/")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Bem-vindo")
}

func TestPages_NotFound(t *testing.T) {
	b := newApp(t).browser()
	res := b.get("/nao-existe")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Contains(t, res.Body, "Página não encontrada")
}

func TestAuth_LoginFailureShowsMessage(t *testing.T) {
	b := newApp(t).browser()
	res := b.post("/login", url.Values{"email": {adminEmail}, "senha": {"errada"}})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Contains(t, res.Body, "Email ou senha inválidos")
	assert.Contains(t, res.Body, adminEmail)
	assert.Nil(t, b.workspace().Session.User())
}

func TestAuth_LoginLogout(t *testing.T) {
	b := newApp(t).browser()
	b.login(adminEmail, adminPassword)

	user := b.workspace().Session.User()
	require.NotNil(t, user)
	assert.Equal(t, model.RoleAdmin, user.Role)

	res := b.get("/menu")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Pizza Calabresa")

	res = b.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/login", res.Location)

	res = b.get("/menu")
	assert.Equal(t, "/login", res.Location)
	tok, err := b.workspace().Tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestAuth_SecondSignInStartsClean(t *testing.T) {
	b := newApp(t).browser()
	b.register("Ana", "ana@x.com", "CUSTOMER")
	b.get("/menu")

	ws := b.workspace()
	var burger model.MenuItem
	for _, it := range ws.Menu.Items() {
		if it.Nome == "X-Burguer" {
			burger = it
		}
	}
	require.NotEmpty(t, burger.ID)
	b.post("/menu/carrinho", url.Values{"id": {burger.ID.String()}, "quantidade": {"2"}})
	require.Equal(t, 2, ws.Cart.Count())

	b.register("Bia", "bia@x.com", "CUSTOMER")

	require.NotNil(t, ws.Session.User())
	assert.Equal(t, "bia@x.com", ws.Session.User().Email)
	assert.Equal(t, 0, ws.Cart.Count())
	assert.Empty(t, ws.Menu.Items())

	res := b.get("/carrinhoDeCompras")
	require.Equal(t, http.StatusOK, res.Status)
	assert.NotContains(t, res.Body, "X-Burguer")
}

func TestAuth_RegisterValidation(t *testing.T) {
	b := newApp(t).browser()
	res := b.post("/registro", url.Values{
		"nome": {"Ana"}, "email": {"ana@x.com"}, "telefone": {"1"},
		"senha": {"segredo"}, "confirmarSenha": {"outra"}, "role": {"CUSTOMER"},
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Body, model.ErrPasswordMismatch.Error())
	assert.Contains(t, res.Body, `value="ana@x.com"`)
	assert.NotContains(t, res.Body, "segredo")
}

func TestGuard_RoleMismatch(t *testing.T) {
	b := newApp(t).browser()
	b.register("Ana", "ana@x.com", "CUSTOMER")

	res := b.get("/cardapioGerente")
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/NaoAutorizado", res.Location)

	res = b.get("/NaoAutorizado")
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Contains(t, res.Body, "Acesso não autorizado")

	assert.Equal(t, "/NaoAutorizado", b.get("/pedidos").Location)
	assert.Equal(t, http.StatusOK, b.get("/perfil").Status)
}

func TestMenu_CategoryAndCart(t *testing.T) {
	b := newApp(t).browser()
	b.register("Ana", "ana@x.com", "CUSTOMER")

	res := b.get("/menu?categoria=hamburgueres")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "X-Burguer")
	assert.NotContains(t, res.Body, "Pizza Calabresa")

	res = b.get("/menu?categoria=sushi")
	assert.Equal(t, http.StatusBadRequest, res.Status)

	ws := b.workspace()
	burger, ok := func() (model.MenuItem, bool) {
		for _, it := range ws.Menu.Items() {
			if it.Nome == "X-Burguer" {
				return it, true
			}
		}
		return model.MenuItem{}, false
	}()
	require.True(t, ok)

	res = b.post("/menu/carrinho", url.Values{"id": {burger.ID.String()}, "quantidade": {"2"}, "categoria": {"hamburgueres"}})
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/menu?categoria=hamburgueres", res.Location)

	res = b.get("/carrinhoDeCompras")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "X-Burguer adicionado ao carrinho")
	assert.Contains(t, res.Body, "R$ 50,00")
	assert.Contains(t, res.Body, "Carrinho (2)")

	b.post("/carrinhoDeCompras/"+burger.ID.String()+"/remover", nil)
	assert.Equal(t, 0, ws.Cart.Count())
}

func TestMenu_Search(t *testing.T) {
	b := newApp(t).browser()
	b.register("Ana", "ana@x.com", "CUSTOMER")

	res := b.get("/menu?busca=burg")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "X-Burguer")
	assert.NotContains(t, res.Body, "Pizza Calabresa")
	assert.Contains(t, res.Body, `value="burg"`)

	res = b.get("/menu?busca=lasanha")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Nenhum item encontrado.")
}

func TestMenu_UnavailableItemIsNotAdded(t *testing.T) {
	b := newApp(t).browser()
	b.register("Ana", "ana@x.com", "CUSTOMER")
	b.get("/menu")

	ws := b.workspace()
	var pudim model.MenuItem
	for _, it := range ws.Menu.Items() {
		if it.Nome == "Pudim" {
			pudim = it
		}
	}
	require.NotEmpty(t, pudim.ID)

	b.post("/menu/carrinho", url.Values{"id": {pudim.ID.String()}})
	assert.Equal(t, 0, ws.Cart.Count())
	assert.Contains(t, b.get("/menu").Body, "item indisponível no momento")
}

func TestProfile_Addresses(t *testing.T) {
	b := newApp(t).browser()
	b.register("Ana", "ana@x.com", "CUSTOMER")

	res := b.post("/perfil/cep", url.Values{"zipcode": {"01001-000"}, "numero": {"10"}})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, `value="Praça da Sé"`)
	assert.Contains(t, res.Body, `value="10"`)

	res = b.post("/perfil/enderecos", url.Values{"zipcode": {"123"}, "rua": {"Rua A"}})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Body, model.ErrInvalidCEP.Error())
	assert.Contains(t, res.Body, `value="Rua A"`)

	res = b.post("/perfil/enderecos", url.Values{"zipcode": {"01001000"}, "rua": {"Rua A"}, "numero": {"1"}})
	assert.Equal(t, http.StatusSeeOther, res.Status)
	res = b.post("/perfil/enderecos", url.Values{"zipcode": {"01001000"}, "rua": {"Rua B"}, "numero": {"2"}})
	assert.Equal(t, http.StatusSeeOther, res.Status)

	ws := b.workspace()
	addrs := ws.Profile.Addresses()
	require.Len(t, addrs, 2)
	assert.True(t, addrs[0].IsDefault)

	b.post("/perfil/enderecos/"+addrs[1].ID.String()+"/padrao", nil)
	addrs = ws.Profile.Addresses()
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[1].IsDefault)
	assert.Contains(t, b.get("/perfil").Body, "Rua B")
}

func TestKitchen_OrdersPollingFollowsView(t *testing.T) {
	b := newApp(t).browser()
	b.login(adminEmail, adminPassword)
	ws := b.workspace()

	res := b.get("/pedidos?filtro=TODOS")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Pedido #101")
	assert.Contains(t, res.Body, "Pedido #102")
	assert.True(t, ws.Kitchen.Polling())

	var pending model.Order
	for _, o := range ws.Kitchen.Orders() {
		if o.Numero == "101" {
			pending = o
		}
	}
	res = b.post("/pedidos/"+pending.ID.String()+"/status", url.Values{"status": {"EM_PREPARO"}, "filtro": {"TODOS"}})
	assert.Equal(t, "/pedidos?filtro=TODOS", res.Location)
	for _, o := range ws.Kitchen.Orders() {
		if o.Numero == "101" {
			assert.Equal(t, model.OrderPreparing, o.Status)
		}
	}

	b.get("/menu")
	assert.False(t, ws.Kitchen.Polling())
}

func TestKitchen_AvailabilityToggle(t *testing.T) {
	b := newApp(t).browser()
	b.register("Chef", "chef@x.com", "KITCHEN")

	res := b.get("/cardapioCozinha")
	require.Equal(t, http.StatusOK, res.Status)
	ws := b.workspace()
	item := ws.Menu.Items()[0]
	require.True(t, item.Disponibilidade)

	b.post("/cardapioCozinha/"+item.ID.String()+"/disponibilidade", url.Values{"disponibilidade": {"false"}})
	updated, ok := ws.Menu.Find(item.ID.String())
	require.True(t, ok)
	assert.False(t, updated.Disponibilidade)

	assert.Equal(t, "/NaoAutorizado", b.get("/cardapioGerente").Location)
}

func TestKitchen_MenuByCategory(t *testing.T) {
	b := newApp(t).browser()
	b.register("Chef", "chef@x.com", "KITCHEN")

	res := b.get("/cardapioCozinha?categoria=hamburgueres")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "X-Burguer")
	assert.NotContains(t, res.Body, "Pizza Calabresa")

	res = b.get("/cardapioCozinha?categoria=sushi")
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Body, "Categoria inválida")
}

func multipartForm(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		part, err := w.CreateFormFile("fotos", "foto.png")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCatalog_CreateEditDelete(t *testing.T) {
	b := newApp(t).browser()
	b.login(adminEmail, adminPassword)
	ws := b.workspace()

	b.post("/cardapioGerente/novo", nil)
	assert.Contains(t, b.get("/cardapioGerente").Body, "Fotos (até 5)")

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	body, ct := multipartForm(t, map[string]string{
		"nome": "Suco de Uva", "descricao": "300ml", "preco": "9,90",
		"categoria": model.CategoryBebidas, "disponibilidade": "true",
	}, png)
	req, err := http.NewRequest(http.MethodPost, b.app.web.URL+"/cardapioGerente/salvar", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	res := b.do(req)
	assert.Equal(t, http.StatusSeeOther, res.Status)

	var suco model.MenuItem
	for _, it := range ws.Menu.Items() {
		if it.Nome == "Suco de Uva" {
			suco = it
		}
	}
	require.NotEmpty(t, suco.ID)
	assert.Equal(t, int64(990), suco.Preco)
	assert.Len(t, suco.Fotos, 1)
	assert.Equal(t, "idle", ws.Catalog.View().State.String())
	assert.Contains(t, b.get("/cardapioGerente").Body, "salvo com sucesso")

	b.get("/cardapioGerente/" + suco.ID.String() + "/editar")
	assert.Equal(t, suco.ID.String(), ws.Catalog.View().Form.ID)
	assert.Equal(t, "9.90", ws.Catalog.View().Form.Preco)
	b.post("/cardapioGerente/cancelar", nil)

	b.post("/cardapioGerente/"+suco.ID.String()+"/excluir", nil)
	assert.Contains(t, b.get("/cardapioGerente").Body, "Tem certeza")
	_, stillThere := ws.Menu.Find(suco.ID.String())
	assert.True(t, stillThere, "nothing is deleted before confirmation")

	b.post("/cardapioGerente/excluir/confirmar", nil)
	_, stillThere = ws.Menu.Find(suco.ID.String())
	assert.False(t, stillThere)
}

func TestCatalog_SaveFailureKeepsValues(t *testing.T) {
	b := newApp(t).browser()
	b.login(adminEmail, adminPassword)
	ws := b.workspace()

	b.post("/cardapioGerente/novo", nil)
	body, ct := multipartForm(t, map[string]string{
		"nome": "Sem preço", "preco": "abc", "categoria": model.CategoryPizzas,
	}, nil)
	req, err := http.NewRequest(http.MethodPost, b.app.web.URL+"/cardapioGerente/salvar", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	b.do(req)

	view := ws.Catalog.View()
	assert.Equal(t, "editing", view.State.String())
	assert.NotEmpty(t, view.Error)
	assert.Equal(t, "Sem preço", view.Form.Nome)
}

func TestCatalog_Export(t *testing.T) {
	b := newApp(t).browser()
	b.login(adminEmail, adminPassword)

	res := b.get("/cardapioGerente/exportar")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, xlsxContentType, res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "cardapio-")

	f, err := excelize.OpenReader(strings.NewReader(res.Body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Cardapio")
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestSession_ExpiryRedirectsToLogin(t *testing.T) {
	b := newApp(t).browser()
	b.login(adminEmail, adminPassword)
	ws := b.workspace()

	require.NoError(t, ws.Tokens.SetToken(context.Background(), "stale"))

	res := b.get("/menu?recarregar=1")
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/login", res.Location)
	assert.Nil(t, ws.Session.User())

	res = b.get("/login")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, sessionExpiredMessage)
}
