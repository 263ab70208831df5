package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/marketplace-listings/internal/catalog"
	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/form"
	"github.com/ignatzorin/marketplace-listings/internal/http/middleware"
	"github.com/ignatzorin/marketplace-listings/internal/infrastructure/persistence"
	"github.com/ignatzorin/marketplace-listings/internal/payment"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/clock"
	"github.com/ignatzorin/marketplace-listings/internal/service"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/dashboard"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	clock  *clock.Fake
}

// newTestServer собирает хэндлеры поверх хранилища в памяти. Пользователь
// берётся из заголовка X-Test-User, роль из X-Test-Role.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := catalog.Default()
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := credential.NewIssuer(credential.WithClock(clk))
	t.Cleanup(issuer.Close)

	repo := persistence.NewMemoryProductRepository()
	cache := service.NewCacheService(t.Context())

	forms := form.NewManager(form.Deps{
		Issuer:     issuer,
		Payment:    payment.NewMockGateway(0),
		Creator:    listing.NewCreateProductUseCase(repo, reg, cache),
		Categories: reg,
		Clock:      clk,
	}, time.Hour, nil)
	t.Cleanup(forms.Shutdown)

	formHandler := NewFormHandler(forms)
	productHandler := NewProductHandler(
		listing.NewGetProductUseCase(repo),
		listing.NewListMyProductsUseCase(repo),
		listing.NewPatchProductUseCase(repo, reg, cache),
		listing.NewDeleteProductUseCase(repo, cache),
		listing.NewSubmitForReviewUseCase(repo, cache),
		listing.NewUnpublishProductUseCase(repo, cache),
	)
	adminHandler := NewAdminHandler(
		listing.NewApproveProductUseCase(repo, cache),
		listing.NewRejectProductUseCase(repo, cache),
		listing.NewArchiveProductUseCase(repo, cache),
	)
	dashboardHandler := NewDashboardHandler(dashboard.NewSellerDashboardUseCase(repo, cache, service.DashboardCacheKey))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader("X-Test-User")); err == nil {
			c.Set(middleware.ContextUserIDKey, id)
			c.Set(middleware.ContextRoleKey, c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	r.POST("/listing-forms", formHandler.Open)
	r.GET("/listing-forms/:id", formHandler.Get)
	r.PATCH("/listing-forms/:id", formHandler.Patch)
	r.POST("/listing-forms/:id/payment", formHandler.AcknowledgePayment)
	r.GET("/listing-forms/:id/credential", formHandler.Credential)
	r.POST("/listing-forms/:id/submit", formHandler.Submit)
	r.DELETE("/listing-forms/:id", formHandler.Close)
	r.GET("/products", productHandler.ListMyProducts)
	r.GET("/products/:id", productHandler.GetProduct)
	r.PATCH("/products/:id", productHandler.PatchProduct)
	r.DELETE("/products/:id", productHandler.DeleteProduct)
	r.POST("/products/:id/submit", productHandler.SubmitForReview)
	r.POST("/products/:id/unpublish", productHandler.Unpublish)
	r.POST("/admin/products/:id/approve", adminHandler.Approve)
	r.POST("/admin/products/:id/reject", adminHandler.Reject)
	r.GET("/dashboard", dashboardHandler.GetDashboard)

	return &testServer{engine: r, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path string, user uuid.UUID, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func validFields() map[string]any {
	return map[string]any{
		"name":             "Наушники Sony WH-1000XM5",
		"description":      "Беспроводные наушники с шумоподавлением, на гарантии",
		"price":            29990,
		"stock":            3,
		"primary_category": "Электроника",
		"sub_category":     "Аудио",
		"image_urls":       []string{"https://cdn.example.com/sony.jpg"},
	}
}

// createProduct проходит форму целиком и возвращает id созданного товара.
func (s *testServer) createProduct(t *testing.T, seller uuid.UUID) uuid.UUID {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/listing-forms", seller, nil)
	require.Equal(t, http.StatusCreated, status)
	var state struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	formPath := "/listing-forms/" + state.ID.String()

	status, _ = s.do(t, http.MethodPatch, formPath, seller, validFields())
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPost, formPath+"/payment", seller, nil)
	require.Equal(t, http.StatusOK, status)
	var display credential.Display
	require.NoError(t, json.Unmarshal(env.Data, &display))
	require.Len(t, display.Code, 6)

	status, _ = s.do(t, http.MethodPatch, formPath, seller, map[string]any{"code": display.Code})
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPost, formPath+"/submit", seller, nil)
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		Product struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"product"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "draft", created.Product.Status)
	return created.Product.ID
}

func TestFormHandler_CreatesDraftAfterCode(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()

	productID := s.createProduct(t, seller)

	status, env := s.do(t, http.MethodGet, "/products/"+productID.String(), seller, nil)
	require.Equal(t, http.StatusOK, status)
	var product struct {
		Status  string `json:"status"`
		Actions struct {
			CanEdit            bool `json:"can_edit"`
			CanSubmitForReview bool `json:"can_submit_for_review"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.Equal(t, "draft", product.Status)
	assert.True(t, product.Actions.CanEdit)
	assert.True(t, product.Actions.CanSubmitForReview)
}

func TestFormHandler_WrongCodeRejected(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()

	_, env := s.do(t, http.MethodPost, "/listing-forms", seller, nil)
	var state struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	formPath := "/listing-forms/" + state.ID.String()

	s.do(t, http.MethodPatch, formPath, seller, validFields())
	status, env := s.do(t, http.MethodPost, formPath+"/payment", seller, nil)
	require.Equal(t, http.StatusOK, status)
	var display credential.Display
	require.NoError(t, json.Unmarshal(env.Data, &display))

	wrong := "000000"
	if display.Code == wrong {
		wrong = "999999"
	}
	s.do(t, http.MethodPatch, formPath, seller, map[string]any{"code": wrong})

	status, env = s.do(t, http.MethodPost, formPath+"/submit", seller, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CREDENTIAL_REJECTED", env.Error.Code)

	// Код не погашен неверной попыткой
	status, _ = s.do(t, http.MethodGet, formPath+"/credential", seller, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestFormHandler_ValidationErrorsByField(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()

	_, env := s.do(t, http.MethodPost, "/listing-forms", seller, nil)
	var state struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	formPath := "/listing-forms/" + state.ID.String()

	fields := validFields()
	fields["price"] = 50
	s.do(t, http.MethodPatch, formPath, seller, fields)

	status, env := s.do(t, http.MethodPost, formPath+"/submit", seller, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "price")
}

func TestFormHandler_CredentialExpires(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()

	_, env := s.do(t, http.MethodPost, "/listing-forms", seller, nil)
	var state struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	formPath := "/listing-forms/" + state.ID.String()

	status, _ := s.do(t, http.MethodPost, formPath+"/payment", seller, nil)
	require.Equal(t, http.StatusOK, status)

	s.clock.Advance(entity.CredentialTTL + time.Second)

	assert.Eventually(t, func() bool {
		status, _ := s.do(t, http.MethodGet, formPath+"/credential", seller, nil)
		return status == http.StatusNotFound
	}, time.Second, 10*time.Millisecond)
}

func TestFormHandler_ForeignSellerForbidden(t *testing.T) {
	s := newTestServer(t)
	owner := uuid.New()

	_, env := s.do(t, http.MethodPost, "/listing-forms", owner, nil)
	var state struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))

	status, env := s.do(t, http.MethodGet, "/listing-forms/"+state.ID.String(), uuid.New(), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, _ = s.do(t, http.MethodGet, "/listing-forms/"+state.ID.String(), uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProductHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()
	admin := uuid.New()
	productID := s.createProduct(t, seller)
	productPath := "/products/" + productID.String()

	status, env := s.do(t, http.MethodPost, productPath+"/submit", seller, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"pending_review"`)

	status, _ = s.do(t, http.MethodPost, "/admin/products/"+productID.String()+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, status)

	// Активный товар нельзя удалить и редактировать
	status, env = s.do(t, http.MethodDelete, productPath, seller, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ILLEGAL_TRANSITION", env.Error.Code)

	status, env = s.do(t, http.MethodPatch, productPath, seller, map[string]any{"stock": 5})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ILLEGAL_TRANSITION", env.Error.Code)

	status, _ = s.do(t, http.MethodPost, productPath+"/unpublish", seller, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, productPath, seller, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodGet, productPath, seller, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProductHandler_RejectReasonOptional(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()

	withoutReason := s.createProduct(t, seller)
	s.do(t, http.MethodPost, "/products/"+withoutReason.String()+"/submit", seller, nil)
	status, env := s.do(t, http.MethodPost, "/admin/products/"+withoutReason.String()+"/reject", uuid.New(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"rejected"`)
	assert.Contains(t, string(env.Data), `"rejection_reason":null`)

	emptyObject := s.createProduct(t, seller)
	s.do(t, http.MethodPost, "/products/"+emptyObject.String()+"/submit", seller, nil)
	status, env = s.do(t, http.MethodPost, "/admin/products/"+emptyObject.String()+"/reject", uuid.New(), map[string]any{})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"rejection_reason":null`)

	withReason := s.createProduct(t, seller)
	s.do(t, http.MethodPost, "/products/"+withReason.String()+"/submit", seller, nil)
	status, env = s.do(t, http.MethodPost, "/admin/products/"+withReason.String()+"/reject", uuid.New(), map[string]any{"reason": "нет фото товара"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"rejection_reason":"нет фото товара"`)
}

func TestProductHandler_ListFiltersByStatus(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()
	first := s.createProduct(t, seller)
	s.createProduct(t, seller)
	s.do(t, http.MethodPost, "/products/"+first.String()+"/submit", seller, nil)

	status, env := s.do(t, http.MethodGet, "/products?status=pending_review", seller, nil)
	require.Equal(t, http.StatusOK, status)
	var items []struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, first, items[0].ID)

	status, _ = s.do(t, http.MethodGet, "/products?status=unknown", seller, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDashboardHandler_Counters(t *testing.T) {
	s := newTestServer(t)
	seller := uuid.New()
	first := s.createProduct(t, seller)
	s.createProduct(t, seller)
	s.do(t, http.MethodPost, "/products/"+first.String()+"/submit", seller, nil)

	status, env := s.do(t, http.MethodGet, "/dashboard", seller, nil)
	require.Equal(t, http.StatusOK, status)

	var summary struct {
		Counters struct {
			Draft         int `json:"draft"`
			PendingReview int `json:"pending_review"`
			Total         int `json:"total"`
		} `json:"counters"`
		Items []struct {
			Actions struct {
				CanUnpublish bool `json:"can_unpublish"`
			} `json:"actions"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.Counters.Draft)
	assert.Equal(t, 1, summary.Counters.PendingReview)
	assert.Equal(t, 2, summary.Counters.Total)
	assert.Len(t, summary.Items, 2)
}
