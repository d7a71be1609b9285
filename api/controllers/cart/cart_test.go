package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartdto "github.com/angelmondragon/storefront-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCartService struct {
	cart        *cartsvc.Cart
	err         error
	lastSession string
	lastProduct uuid.UUID
	lastQty     int
	cleared     bool
}

func (s *stubCartService) Get(ctx context.Context, sessionID string) (*cartsvc.Cart, error) {
	s.lastSession = sessionID
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cartsvc.Cart, error) {
	s.lastSession, s.lastProduct, s.lastQty = sessionID, productID, quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*cartsvc.Cart, error) {
	s.lastSession, s.lastProduct = sessionID, productID
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string) error {
	s.lastSession = sessionID
	s.cleared = true
	return s.err
}

func sampleCart() *cartsvc.Cart {
	return &cartsvc.Cart{
		Items: []cartsvc.Item{{
			ProductID:   uuid.New(),
			ProductName: "Chai",
			Quantity:    3,
			UnitPrice:   decimal.RequireFromString("18.25"),
		}},
		Version: 4,
	}
}

func withSession(req *http.Request, sid string) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), sid))
}

func TestCartFetchSuccess(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartFetch(svc, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/cart", nil), "sid-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartdto.Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Subtotal != "54.75" || envelope.Data.ItemCount != 3 || envelope.Data.Version != 4 {
		t.Fatalf("unexpected cart payload: %+v", envelope.Data)
	}
	if envelope.Data.Items[0].LineTotal != "54.75" {
		t.Fatalf("unexpected line total %s", envelope.Data.Items[0].LineTotal)
	}
	if svc.lastSession != "sid-1" {
		t.Fatalf("expected session sid-1 got %s", svc.lastSession)
	}
}

func TestCartFetchWithoutCartReturnsEmpty(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodGet, "/cart", nil), "sid-2"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"items":[]`) || !strings.Contains(resp.Body.String(), `"subtotal":"0.00"`) {
		t.Fatalf("expected empty cart, got %s", resp.Body.String())
	}
}

func TestCartAddItem(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartAddItem(svc, nil)
	productID := uuid.New()

	body := `{"product_id":"` + productID.String() + `","quantity":2}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)), "sid-3"))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.lastProduct != productID || svc.lastQty != 2 {
		t.Fatalf("unexpected service call product=%s qty=%d", svc.lastProduct, svc.lastQty)
	}
}

func TestCartAddItemRejectsInvalidQuantity(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	handler := CartAddItem(svc, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)), "sid-4"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastQty != 0 {
		t.Fatalf("service should not be called for invalid payload")
	}
}

func TestCartRemoveItemParsesProductID(t *testing.T) {
	svc := &stubCartService{cart: sampleCart()}
	productID := uuid.New()
	router := chi.NewRouter()
	router.Delete("/cart/items/{productId}", CartRemoveItem(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/cart/items/"+productID.String(), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastProduct != productID {
		t.Fatalf("expected product %s got %s", productID, svc.lastProduct)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/cart/items/not-a-uuid", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id got %d", resp.Code)
	}
}

func TestCartRemoveItemNotInCart(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")}
	router := chi.NewRouter()
	router.Delete("/cart/items/{productId}", CartRemoveItem(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/cart/items/"+uuid.NewString(), nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartClear(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodDelete, "/cart", nil), "sid-5"))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if !svc.cleared || svc.lastSession != "sid-5" {
		t.Fatalf("expected cart cleared for sid-5")
	}
}
