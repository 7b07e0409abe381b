package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appinvoicing "github.com/invoicedash/backend/internal/application/invoicing"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/invoicedash/backend/internal/infrastructure/cache"
	"github.com/invoicedash/backend/internal/interfaces/http/dto"
	"github.com/invoicedash/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const listingPath = "/dashboard/invoices"

var errStore = errors.New("connection refused")

type invoiceFixture struct {
	router    *gin.Engine
	invoices  *MockInvoiceRepository
	customers *MockCustomerRepository
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	invoices := new(MockInvoiceRepository)
	customers := new(MockCustomerRepository)
	views := cache.NewInMemoryViewCache()
	t.Cleanup(func() { _ = views.Close() })

	mutations := appinvoicing.NewMutationService(invoices, views, appinvoicing.MutationServiceConfig{
		ListingPath: listingPath,
		Policies:    appinvoicing.DefaultPolicies(),
	}, zap.NewNop())
	queries := appinvoicing.NewQueryService(invoices, customers, views, appinvoicing.QueryServiceConfig{
		ListingPath: listingPath,
		PageSize:    6,
		ViewTTL:     time.Minute,
	}, zap.NewNop())
	h := NewInvoiceHandler(mutations, queries)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorBoundary(zap.NewNop(), "/dashboard/invoices"))
	router.GET("/dashboard/invoices", h.List)
	router.POST("/dashboard/invoices", h.Create)
	router.GET("/dashboard/invoices/create", h.CreateForm)
	router.GET("/dashboard/invoices/:id/edit", h.EditForm)
	router.POST("/dashboard/invoices/:id/edit", h.Update)
	router.DELETE("/dashboard/invoices/:id", h.Delete)

	return &invoiceFixture{router: router, invoices: invoices, customers: customers}
}

func (f *invoiceFixture) do(method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// multipartRequest encodes form the way a browser FormData submission does
func multipartRequest(t *testing.T, method, target string, form url.Values) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, values := range form {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validSubmission() url.Values {
	return url.Values{
		"customerId": {"C1"},
		"amount":     {"12.50"},
		"status":     {"pending"},
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestInvoiceHandler_Create_RedirectsToListing(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("Insert", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
		return inv.CustomerID == "C1" && inv.Amount == 1250 && inv.Status == invoicing.StatusPending
	})).Return(nil)

	w := f.do(http.MethodPost, "/dashboard/invoices", validSubmission())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, listingPath, w.Header().Get("Location"))
	f.invoices.AssertExpectations(t)
}

func TestInvoiceHandler_Create_AcceptsMultipartForm(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("Insert", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
		return inv.CustomerID == "C1" && inv.Amount == 1250 && inv.Status == invoicing.StatusPending
	})).Return(nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/dashboard/invoices", validSubmission()))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, listingPath, w.Header().Get("Location"))
	f.invoices.AssertExpectations(t)
}

func TestInvoiceHandler_Update_AcceptsMultipartForm(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("Update", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
		return inv.ID == "inv-1" && inv.Amount == 1250
	})).Return(nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/dashboard/invoices/inv-1/edit", validSubmission()))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	f.invoices.AssertExpectations(t)
}

func TestInvoiceHandler_Create_MalformedMultipartIsBadRequest(t *testing.T) {
	f := newInvoiceFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices", strings.NewReader("--x\r\nbroken"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.invoices.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Create_ValidationFailureRendersFieldErrors(t *testing.T) {
	f := newInvoiceFixture(t)

	w := f.do(http.MethodPost, "/dashboard/invoices", url.Values{"amount": {"-5"}, "status": {"overdue"}})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeResponse(t, w)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, dto.ErrCodeValidation, errObj["code"])
	assert.Equal(t, appinvoicing.MsgMissingFields, errObj["message"])
	assert.Len(t, errObj["details"], 3)

	data := body["data"].(map[string]any)
	assert.Equal(t, map[string]any{"amount": "-5", "status": "overdue"}, data["values"])
	assert.Contains(t, data["errors"], "customerId")
	f.invoices.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Create_StoreFailureSurfacesMessage(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("Insert", mock.Anything, mock.Anything).Return(errStore)

	w := f.do(http.MethodPost, "/dashboard/invoices", validSubmission())

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeResponse(t, w)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, dto.ErrCodeDatabase, errObj["code"])
	assert.Equal(t, appinvoicing.MsgCreateDBError, errObj["message"])
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Empty(t, w.Header().Get("Location"))
}

func TestInvoiceHandler_Update_StoreFailureStillRedirects(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.On("Update", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
		return inv.ID == "inv-1" && inv.Amount == 1250
	})).Return(errStore)

	w := f.do(http.MethodPost, "/dashboard/invoices/inv-1/edit", validSubmission())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, listingPath, w.Header().Get("Location"))
}

func TestInvoiceHandler_Update_InvalidInputReachesErrorBoundary(t *testing.T) {
	f := newInvoiceFixture(t)

	w := f.do(http.MethodPost, "/dashboard/invoices/inv-1/edit", url.Values{"customerId": {"C1"}, "amount": {"0"}, "status": {"paid"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), middleware.BoundaryMessage)
	assert.Contains(t, w.Body.String(), "Try again")
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Delete(t *testing.T) {
	t.Run("completes in place", func(t *testing.T) {
		f := newInvoiceFixture(t)
		f.invoices.On("Delete", mock.Anything, "missing-id").Return(nil)

		w := f.do(http.MethodDelete, "/dashboard/invoices/missing-id", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("store failure is raised", func(t *testing.T) {
		f := newInvoiceFixture(t)
		f.invoices.On("Delete", mock.Anything, "inv-1").Return(errStore)

		w := f.do(http.MethodDelete, "/dashboard/invoices/inv-1", nil, "Accept", "application/json")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeResponse(t, w)
		assert.Equal(t, middleware.BoundaryMessage, body["error"].(map[string]any)["message"])
	})
}

func TestInvoiceHandler_List_ServesCachedPageUntilMutation(t *testing.T) {
	f := newInvoiceFixture(t)
	page := &invoicing.InvoicePage{
		Items:      []invoicing.InvoiceSummary{{ID: "inv-1", Amount: 1250, Status: invoicing.StatusPending, Name: "Lee"}},
		Total:      7,
		Page:       2,
		PageSize:   6,
		TotalPages: 2,
	}
	filter := invoicing.ListFilter{Query: "lee", Page: 2, PageSize: 6}
	f.invoices.On("List", mock.Anything, filter).Return(page, nil).Twice()
	f.invoices.On("Delete", mock.Anything, "inv-9").Return(nil)

	for i := 0; i < 2; i++ {
		w := f.do(http.MethodGet, "/dashboard/invoices?query=lee&page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		meta := decodeResponse(t, w)["meta"].(map[string]any)
		assert.Equal(t, float64(7), meta["total"])
		assert.Equal(t, float64(2), meta["total_pages"])
	}
	f.invoices.AssertNumberOfCalls(t, "List", 1)

	f.do(http.MethodDelete, "/dashboard/invoices/inv-9", nil)
	w := f.do(http.MethodGet, "/dashboard/invoices?query=lee&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f.invoices.AssertNumberOfCalls(t, "List", 2)
}

func TestInvoiceHandler_List_RejectsBadPage(t *testing.T) {
	f := newInvoiceFixture(t)

	w := f.do(http.MethodGet, "/dashboard/invoices?page=abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_EditForm(t *testing.T) {
	t.Run("returns invoice in major units", func(t *testing.T) {
		f := newInvoiceFixture(t)
		f.invoices.On("FindByID", mock.Anything, "inv-1").Return(&invoicing.Invoice{
			ID: "inv-1", CustomerID: "C1", Amount: 1250, Status: invoicing.StatusPaid, Date: "2024-03-09",
		}, nil)
		f.customers.On("List", mock.Anything).Return([]invoicing.Customer{{ID: "C1", Name: "Lee Robinson"}}, nil)

		w := f.do(http.MethodGet, "/dashboard/invoices/inv-1/edit", nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]any)
		inv := data["invoice"].(map[string]any)
		assert.Equal(t, "12.5", inv["amount"])
		assert.Equal(t, "paid", inv["status"])
		assert.Len(t, data["customers"], 1)
	})

	t.Run("missing invoice is 404", func(t *testing.T) {
		f := newInvoiceFixture(t)
		f.invoices.On("FindByID", mock.Anything, "nope").Return(nil, shared.ErrNotFound)

		w := f.do(http.MethodGet, "/dashboard/invoices/nope/edit", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
	})
}

func TestInvoiceHandler_CreateForm(t *testing.T) {
	f := newInvoiceFixture(t)
	f.customers.On("List", mock.Anything).Return([]invoicing.Customer{
		{ID: "C1", Name: "Delba de Oliveira"},
		{ID: "C2", Name: "Lee Robinson"},
	}, nil)

	w := f.do(http.MethodGet, "/dashboard/invoices/create", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Len(t, data["customers"], 2)
}
