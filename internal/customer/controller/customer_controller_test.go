package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	accountservice "storefront/internal/account/service"
	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/server/httpx"
)

type mockCustomerService struct {
	SearchFunc     func(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error)
	GetFunc        func(ctx context.Context, id int64) (*domain.Customer, error)
	CreateFunc     func(ctx context.Context, creds accountservice.Credentials, c domain.Customer) (*domain.Customer, error)
	UpdateFunc     func(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	DeactivateFunc func(ctx context.Context, id int64) error
}

func (m *mockCustomerService) Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error) {
	return m.SearchFunc(ctx, query, limit, offset)
}

func (m *mockCustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockCustomerService) Create(ctx context.Context, creds accountservice.Credentials, c domain.Customer) (*domain.Customer, error) {
	return m.CreateFunc(ctx, creds, c)
}

func (m *mockCustomerService) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	return m.UpdateFunc(ctx, c)
}

func (m *mockCustomerService) Deactivate(ctx context.Context, id int64) error {
	return m.DeactivateFunc(ctx, id)
}

func withCustomer(profileID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := httpx.Principal{AccountID: 100 + profileID, AccountType: domain.AccountTypeCustomer, ProfileID: profileID}
			next.ServeHTTP(w, r.WithContext(httpx.WithPrincipal(r.Context(), p)))
		})
	}
}

func TestGetMe_UsesProfileFromToken(t *testing.T) {
	svc := &mockCustomerService{
		GetFunc: func(ctx context.Context, id int64) (*domain.Customer, error) {
			return &domain.Customer{ID: id, FullName: "Eve", IsActive: true}, nil
		},
	}
	c := NewController(svc, zap.NewNop())
	r := chi.NewRouter()
	r.With(withCustomer(12)).Get("/me", c.GetMe)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CustomerDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.ID)
}

func TestUpdateMe_IgnoresBodyIdentity(t *testing.T) {
	var gotID int64
	svc := &mockCustomerService{
		UpdateFunc: func(ctx context.Context, cu domain.Customer) (*domain.Customer, error) {
			gotID = cu.ID
			return &cu, nil
		},
	}
	c := NewController(svc, zap.NewNop())
	r := chi.NewRouter()
	r.With(withCustomer(12)).Put("/me", c.UpdateMe)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(`{"fullName":"Eve Adams","address":"9 Oak Rd"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), gotID)
}

func TestList_Paging(t *testing.T) {
	svc := &mockCustomerService{
		SearchFunc: func(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error) {
			assert.Equal(t, "eve", query)
			assert.Equal(t, 5, limit)
			assert.Equal(t, 5, offset)
			return []domain.Customer{{ID: 1}}, 6, nil
		},
	}
	c := NewController(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/admin/customers", c.List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/customers?q=eve&page=2&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CustomerListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Meta.HasMore)
	assert.Len(t, resp.Customers, 1)
}

func TestCreate_PassesCredentials(t *testing.T) {
	svc := &mockCustomerService{
		CreateFunc: func(ctx context.Context, creds accountservice.Credentials, cu domain.Customer) (*domain.Customer, error) {
			assert.Equal(t, "frank", creds.Username)
			cu.ID = 4
			return &cu, nil
		},
	}
	c := NewController(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/admin/customers", c.Create)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/customers", strings.NewReader(`{"username":"frank","password":"secret1","fullName":"Frank"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
