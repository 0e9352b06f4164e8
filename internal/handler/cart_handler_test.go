package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bistro/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartHandler_Session(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{name: "issues a new session", incoming: ""},
		{name: "keeps the caller's session", incoming: "cart-abc", reused: true},
		{name: "replaces an oversized token", incoming: strings.Repeat("x", 65)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			var seen string
			svc.On("Get", mock.Anything, mock.AnythingOfType("string")).
				Run(func(args mock.Arguments) { seen = args.String(1) }).
				Return(&model.CartSummary{}, nil)
			h := NewCartHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.incoming != "" {
				req.Header.Set(CartSessionHeader, tt.incoming)
			}

			w := serve("GET /api/cart", h.Get, req)

			assert.Equal(t, http.StatusOK, w.Code)
			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(CartSessionHeader))
			if tt.reused {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestCartHandler_Add(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", body: `{"menuItemId":3,"quantity":2}`, expectedStatus: http.StatusOK, expectService: true},
		{name: "Missing item", body: `{"quantity":2}`, expectedStatus: http.StatusBadRequest},
		{name: "Invalid JSON", body: `{`, expectedStatus: http.StatusBadRequest},
		{name: "Unavailable item", body: `{"menuItemId":3,"quantity":1}`, serviceErr: model.ErrItemUnavailable, expectedStatus: http.StatusBadRequest, expectService: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			if tt.expectService {
				summary := &model.CartSummary{ItemCount: 2, Total: decimal.RequireFromString("25")}
				if tt.serviceErr != nil {
					summary = nil
				}
				svc.On("Add", mock.Anything, "cart-1", mock.MatchedBy(func(req *model.AddToCartRequest) bool {
					return req.MenuItemID == 3
				})).Return(summary, tt.serviceErr)
			}
			h := NewCartHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(tt.body))
			req.Header.Set(CartSessionHeader, "cart-1")

			w := serve("POST /api/cart/items", h.Add, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	svc := new(MockCartService)
	svc.On("UpdateQuantity", mock.Anything, "cart-1", "3_addon_7", 4).Return(&model.CartSummary{ItemCount: 4}, nil)
	svc.On("Remove", mock.Anything, "cart-1", "9").Return(nil, model.ErrCartLineNotFound)
	h := NewCartHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/3_addon_7", strings.NewReader(`{"quantity":4}`))
	req.Header.Set(CartSessionHeader, "cart-1")
	w := serve("PUT /api/cart/items/{key}", h.Update, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/cart/items/9", nil)
	req.Header.Set(CartSessionHeader, "cart-1")
	w = serve("DELETE /api/cart/items/{key}", h.Remove, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestCartHandler_ApplyPromo(t *testing.T) {
	svc := new(MockCartService)
	svc.On("ApplyPromo", mock.Anything, "cart-1", "OLD10").Return(nil, model.ErrPromoExpired)
	h := NewCartHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/promo", strings.NewReader(`{"code":"OLD10"}`))
	req.Header.Set(CartSessionHeader, "cart-1")

	w := serve("POST /api/cart/promo", h.ApplyPromo, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodePromoExpired, errorBody(t, w).Error)
}
