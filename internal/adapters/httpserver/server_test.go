package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/sheetstore/internal/adapters/repo/memory"
	"github.com/phenrril/sheetstore/internal/domain"
	"github.com/phenrril/sheetstore/internal/mocks"
	"github.com/phenrril/sheetstore/internal/theme"
	"github.com/phenrril/sheetstore/internal/usecase"
	"github.com/phenrril/sheetstore/internal/views"
)

func teeProducts() []domain.Product {
	return []domain.Product{
		{Key: domain.ProductKey("Tee A"), Name: "Tee A", Price: decimal.RequireFromString("499"), ImageURL: "https://img.example/a.png", RowIndex: 0},
		{Key: domain.ProductKey("Tee B"), Name: "Tee B", Price: decimal.RequireFromString("599"), ImageURL: "https://img.example/b.png", RowIndex: 1},
	}
}

type fixture struct {
	srv      *httptest.Server
	source   *mocks.MockCatalogSource
	sink     *mocks.MockOrderSink
	orderLog *mocks.MockTableSource
}

func newFixture(t *testing.T, slug string) *fixture {
	t.Helper()
	tmpl, err := views.Parse()
	require.NoError(t, err)
	th, err := theme.Load(slug)
	require.NoError(t, err)

	f := &fixture{
		source:   new(mocks.MockCatalogSource),
		sink:     new(mocks.MockOrderSink),
		orderLog: new(mocks.MockTableSource),
	}
	s := New(tmpl, th,
		&usecase.CatalogUC{Source: f.source},
		usecase.NewOrderUC(f.sink, nil, th.Sizes),
		usecase.NewAdminUC("s3cret", f.orderLog),
		memory.NewSessionRepo(time.Hour),
		"test-key",
	)
	s.SetFeaturedPicker(func(int) int { return 1 })
	f.srv = httptest.NewServer(s)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) withProducts() *fixture {
	f.source.On("Fetch", mock.Anything).Return(teeProducts(), nil)
	return f
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (f *fixture) get(t *testing.T, c *http.Client) *goquery.Document {
	t.Helper()
	resp, err := c.Get(f.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// post sigue el 303 y devuelve la página resultante.
func (f *fixture) post(t *testing.T, c *http.Client, path string, form url.Values) *goquery.Document {
	t.Helper()
	resp, err := c.PostForm(f.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func cardNames(doc *goquery.Document) []string {
	var names []string
	doc.Find(".card .name").Each(func(_ int, s *goquery.Selection) {
		names = append(names, strings.TrimSpace(s.Text()))
	})
	return names
}

func flash(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(".flash[role=status]").Text())
}

func TestCatalog_RendersCardsInSheetOrder(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	doc := f.get(t, newClient(t))

	assert.Equal(t, []string{"Tee A", "Tee B"}, cardNames(doc))
	assert.Equal(t, 1, doc.Find("#col-0 .card").Length())
	assert.Equal(t, 1, doc.Find("#col-1 .card").Length())
	assert.Equal(t, 0, doc.Find("#col-2 .card").Length())
	assert.Equal(t, "Buy Tee B", strings.TrimSpace(doc.Find("#card-1 button").Text()))
	assert.Contains(t, doc.Find(".teaser").Text(), "Hoodies Coming Soon")
	assert.Equal(t, 0, doc.Find("#featured").Length())
}

func TestCatalog_FeaturedTheme(t *testing.T) {
	f := newFixture(t, "flix").withProducts()
	doc := f.get(t, newClient(t))

	assert.Equal(t, "Tee B", strings.TrimSpace(doc.Find("#featured h2").Text()))
	assert.Equal(t, 2, doc.Find(".card_tile").Length())
}

func TestCatalog_LoadFailureShowsEmptyState(t *testing.T) {
	f := newFixture(t, "shark")
	f.source.On("Fetch", mock.Anything).Return(nil, domain.ErrMalformed)

	doc := f.get(t, newClient(t))
	assert.Equal(t, "No products found in the sheet.", strings.TrimSpace(doc.Find("#empty").Text()))
	assert.Equal(t, 1, doc.Find(".hint").Length())
	assert.Equal(t, 0, doc.Find(".card").Length())
}

func TestOrderFlow_Success(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)
	want := domain.Order{Name: " J ", Size: "M", Phone: "123", Item: "Tee B"}
	f.sink.On("Send", mock.Anything, want).Return(nil).Once()

	doc := f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee B")}})
	assert.Equal(t, "Order: Tee B", strings.TrimSpace(doc.Find("h2.name").Text()))
	assert.Contains(t, doc.Find("#order .price").Text(), "599")
	assert.Equal(t, 4, doc.Find("select[name=size] option").Length())

	doc = f.post(t, c, "/order", url.Values{"name": {" J "}, "size": {"M"}, "phone": {"123"}})
	assert.Equal(t, msgOrderPlaced, flash(doc))
	assert.Equal(t, []string{"Tee A", "Tee B"}, cardNames(doc))

	// el aviso se muestra una sola vez
	doc = f.get(t, c)
	assert.Empty(t, flash(doc))
	f.sink.AssertExpectations(t)
}

func TestOrderFlow_SinkFailureStaysOnOrder(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)
	f.sink.On("Send", mock.Anything, mock.Anything).Return(domain.ErrSinkRejected).Once()

	f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee A")}})
	doc := f.post(t, c, "/order", url.Values{"name": {"J"}, "size": {"L"}, "phone": {"123"}})

	assert.Equal(t, msgOrderFailed, flash(doc))
	assert.Equal(t, 1, doc.Find("#order-form").Length())
	assert.Equal(t, "Order: Tee A", strings.TrimSpace(doc.Find("h2.name").Text()))
	f.sink.AssertExpectations(t)
}

func TestOrderFlow_InvalidInputNotSent(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)

	f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee A")}})
	doc := f.post(t, c, "/order", url.Values{"name": {"J"}, "size": {"XXL"}, "phone": {"123"}})
	assert.Equal(t, msgOrderInvalid, flash(doc))

	doc = f.post(t, c, "/order", url.Values{"name": {"J"}, "phone": {"123"}})
	assert.Equal(t, msgOrderInvalid, flash(doc))
	assert.Equal(t, 1, doc.Find("#order-form").Length())
	f.sink.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestOrderFlow_EmptyNameAndPhoneAreSent(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)
	want := domain.Order{Size: "S", Item: "Tee A"}
	f.sink.On("Send", mock.Anything, want).Return(nil).Once()

	f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee A")}})
	doc := f.post(t, c, "/order", url.Values{"name": {""}, "size": {"S"}, "phone": {""}})

	assert.Equal(t, msgOrderPlaced, flash(doc))
	assert.Len(t, cardNames(doc), 2)
	f.sink.AssertNumberOfCalls(t, "Send", 1)
}

func TestOrder_WithoutSelection(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	doc := f.post(t, newClient(t), "/order", url.Values{"name": {"J"}, "size": {"M"}, "phone": {"123"}})

	assert.Equal(t, msgNoSelection, flash(doc))
	assert.Len(t, cardNames(doc), 2)
	f.sink.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSelect_UnknownKeyAndBack(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)

	doc := f.post(t, c, "/select", url.Values{"key": {"nope"}})
	assert.Equal(t, msgGone, flash(doc))
	assert.Len(t, cardNames(doc), 2)

	doc = f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee B")}})
	require.Equal(t, 1, doc.Find("#order-form").Length())
	doc = f.post(t, c, "/back", nil)
	assert.Equal(t, 0, doc.Find("#order-form").Length())
	assert.Len(t, cardNames(doc), 2)
}

func TestSessions_AreIsolated(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	alice, bob := newClient(t), newClient(t)

	doc := f.post(t, alice, "/select", url.Values{"key": {domain.ProductKey("Tee B")}})
	require.Equal(t, 1, doc.Find("#order-form").Length())

	doc = f.get(t, bob)
	assert.Equal(t, 0, doc.Find("#order-form").Length())
	assert.Len(t, cardNames(doc), 2)

	doc = f.get(t, alice)
	assert.Equal(t, "Order: Tee B", strings.TrimSpace(doc.Find("h2.name").Text()))
}

func TestSessions_TamperedCookieStartsFresh(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)
	f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee B")}})

	u, _ := url.Parse(f.srv.URL)
	cookies := c.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	parts := strings.SplitN(cookies[0].Value, ".", 2)
	require.Len(t, parts, 2)

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "AAAA." + parts[1]})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("#order-form").Length())
}

func TestAdmin_GateAndPanel(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	f.orderLog.On("FetchTable", mock.Anything).Return(domain.Table{
		Columns: []string{"name", "size", "phone", "item"},
		Rows:    [][]string{{"J", "M", "123", "Tee B"}},
	}, nil)
	c := newClient(t)

	doc := f.post(t, c, "/nav/admin", nil)
	assert.Equal(t, 1, doc.Find("#admin-login").Length())
	assert.Equal(t, 0, doc.Find("#inventory").Length())

	doc = f.post(t, c, "/admin/auth", url.Values{"password": {"wrong"}})
	assert.Equal(t, 1, doc.Find("#admin-login").Length())
	assert.Empty(t, flash(doc))

	doc = f.post(t, c, "/admin/auth", url.Values{"password": {"s3cret"}})
	assert.Equal(t, 0, doc.Find("#admin-login").Length())
	assert.Equal(t, 2, doc.Find("#inventory tbody tr").Length())
	assert.Equal(t, "Tee B", doc.Find("#orders tbody td").Last().Text())

	// la autorización sobrevive a la navegación
	f.post(t, c, "/nav/shop", nil)
	doc = f.post(t, c, "/nav/admin", nil)
	assert.Equal(t, 1, doc.Find("#inventory").Length())

	doc = f.post(t, c, "/admin/logout", nil)
	assert.Equal(t, 1, doc.Find("#admin-login").Length())
}

func TestAdmin_SelectIgnoredWhileInAdmin(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)

	f.post(t, c, "/nav/admin", nil)
	doc := f.post(t, c, "/select", url.Values{"key": {domain.ProductKey("Tee A")}})
	assert.Equal(t, 1, doc.Find("#admin-login").Length())
	assert.Equal(t, 0, doc.Find("#order-form").Length())
}

func TestAdmin_Export(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	c := newClient(t)

	resp, err := c.Get(f.srv.URL + "/admin/export.xlsx")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.post(t, c, "/admin/auth", url.Values{"password": {"s3cret"}})
	resp, err = c.Get(f.srv.URL + "/admin/export.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory.xlsx")

	wb, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tee B", rows[2][0])
}

func TestAPI_Catalog(t *testing.T) {
	f := newFixture(t, "shark").withProducts()
	resp, err := http.Get(f.srv.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var body struct {
		Items []struct {
			Name  string `json:"name"`
			Price string `json:"price"`
		} `json:"items"`
		Total int    `json:"total"`
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "Tee B", body.Items[1].Name)
	assert.Equal(t, "599", body.Items[1].Price)
	assert.Empty(t, body.Error)
}

func TestAPI_CatalogFailure(t *testing.T) {
	f := newFixture(t, "shark")
	f.source.On("Fetch", mock.Anything).Return(nil, domain.ErrMissingColumn)

	resp, err := http.Get(f.srv.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, []any{}, body["items"])
	assert.Equal(t, "inventory unavailable", body["error"])
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, "shark")
	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
