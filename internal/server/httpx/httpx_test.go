package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/auth"
)

type mockVerifier struct {
	VerifyFunc func(raw string) (*auth.Claims, error)
}

func (m *mockVerifier) Verify(raw string) (*auth.Claims, error) {
	return m.VerifyFunc(raw)
}

type mockAccounts struct {
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Account, error)
}

func (m *mockAccounts) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return m.FindByIDFunc(ctx, id)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTrace_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(TraceHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperrors.NewValidationError("bad", apperrors.ValidationDetail{Field: "x", Message: "y"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", apperrors.NewUnauthorizedError("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperrors.NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", fmt.Errorf("loading: %w", apperrors.NewNotFoundError("missing")), http.StatusNotFound, "NOT_FOUND"},
		{"conflict reason", apperrors.NewConflictErrorWithReason("CARRIER_UNAVAILABLE", "busy"), http.StatusConflict, "CARRIER_UNAVAILABLE"},
		{"deadlock", apperrors.NewDeadlockError("retry"), http.StatusConflict, "DEADLOCK"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), zap.NewNop(), errors.New("dial tcp 10.0.0.1:3306"))

	resp := decodeError(t, rec)
	assert.NotContains(t, resp.Message, "10.0.0.1")
}

func TestAuthenticate(t *testing.T) {
	tokens := map[string]int64{"good": 7, "deactivated": 8, "deleted": 9, "broken": 10}
	verifier := &mockVerifier{
		VerifyFunc: func(raw string) (*auth.Claims, error) {
			id, ok := tokens[raw]
			if !ok {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{AccountID: id, AccountType: domain.AccountTypeCustomer, ProfileID: 3}, nil
		},
	}
	accounts := &mockAccounts{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Account, error) {
			switch id {
			case 7:
				return &domain.Account{ID: 7, Type: domain.AccountTypeCustomer, IsActive: true}, nil
			case 8:
				return &domain.Account{ID: 8, Type: domain.AccountTypeCustomer, IsActive: false}, nil
			case 9:
				return nil, apperrors.NewNotFoundError("account 9 not found")
			}
			return nil, errors.New("connection reset")
		},
	}

	var got Principal
	var reached bool
	h := Authenticate(verifier, accounts, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		got, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		rec := serve("Bearer good")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, Principal{AccountID: 7, AccountType: domain.AccountTypeCustomer, ProfileID: 3}, got)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("bad token", func(t *testing.T) {
		rec := serve("Bearer forged")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("deactivated account", func(t *testing.T) {
		rec := serve("Bearer deactivated")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
		assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
	})

	t.Run("deleted account", func(t *testing.T) {
		rec := serve("Bearer deleted")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("lookup failure", func(t *testing.T) {
		rec := serve("Bearer broken")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, reached)
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(zap.NewNop(), domain.AccountTypeAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithPrincipal(req.Context(), Principal{AccountType: domain.AccountTypeAdmin})))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithPrincipal(req.Context(), Principal{AccountType: domain.AccountTypeCarrier})))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		var req dto.AddCartItemRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":4,"quantity":2}`))
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &req))
		assert.Equal(t, int64(4), req.ProductID)
		assert.Equal(t, 2, req.Quantity)
	})

	t.Run("malformed json", func(t *testing.T) {
		var req dto.AddCartItemRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":`))
		err := DecodeJSON(httptest.NewRecorder(), r, &req)

		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "body", ve.Details[0].Field)
	})

	t.Run("unknown field", func(t *testing.T) {
		var req dto.AddCartItemRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":4,"quantity":2,"price":1}`))
		_, ok := apperrors.IsValidationError(DecodeJSON(httptest.NewRecorder(), r, &req))
		assert.True(t, ok)
	})

	t.Run("validate tags use json names", func(t *testing.T) {
		var req dto.AddCartItemRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":4,"quantity":-1}`))
		err := DecodeJSON(httptest.NewRecorder(), r, &req)

		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		require.Len(t, ve.Details, 1)
		assert.Equal(t, "quantity", ve.Details[0].Field)
	})
}

func TestURLParamID(t *testing.T) {
	var got int64
	var gotErr error
	router := chi.NewRouter()
	router.Get("/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = URLParamID(r, "orderId")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	_, ok := apperrors.IsValidationError(gotErr)
	assert.True(t, ok)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/0", nil))
	_, ok = apperrors.IsValidationError(gotErr)
	assert.True(t, ok)
}

func TestPagination(t *testing.T) {
	p, err := Pagination(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageLimit}, p)
	assert.Equal(t, 0, p.Offset())

	p, err = Pagination(httptest.NewRequest(http.MethodGet, "/?page=3&limit=10", nil))
	require.NoError(t, err)
	assert.Equal(t, 20, p.Offset())

	_, err = Pagination(httptest.NewRequest(http.MethodGet, "/?page=0&limit=500", nil))
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)

	_, err = Pagination(httptest.NewRequest(http.MethodGet, "/?page=9223372036854775807&limit=100", nil))
	ve, ok = apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "page", ve.Details[0].Field)

	p, err = Pagination(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/?page=%d&limit=%d", MaxPage, MaxPageLimit), nil))
	require.NoError(t, err)
	assert.Positive(t, p.Offset())
}

func TestQueryDate(t *testing.T) {
	d, ok, err := QueryDate(httptest.NewRequest(http.MethodGet, "/?from=2024-03-01", nil), "from")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2024, d.Year())

	_, ok, err = QueryDate(httptest.NewRequest(http.MethodGet, "/", nil), "from")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = QueryDate(httptest.NewRequest(http.MethodGet, "/?from=03/01/2024", nil), "from")
	assert.Error(t, err)
}
