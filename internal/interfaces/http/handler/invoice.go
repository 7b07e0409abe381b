package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appinvoicing "github.com/invoicedash/backend/internal/application/invoicing"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/interfaces/http/dto"
	"github.com/invoicedash/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles the invoice pages and form actions
type InvoiceHandler struct {
	BaseHandler
	mutations *appinvoicing.MutationService
	queries   *appinvoicing.QueryService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(mutations *appinvoicing.MutationService, queries *appinvoicing.QueryService) *InvoiceHandler {
	return &InvoiceHandler{
		mutations: mutations,
		queries:   queries,
	}
}

// List returns one page of the invoices listing
// GET /dashboard/invoices?query=&page=
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid listing parameters")
		return
	}

	page, err := h.queries.ListInvoices(c.Request.Context(), req.Query, req.Page)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CreateForm returns the data behind the create form
// GET /dashboard/invoices/create
func (h *InvoiceHandler) CreateForm(c *gin.Context) {
	data, err := h.queries.GetCreateFormData(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// EditForm returns the invoice and customers behind the edit form
// GET /dashboard/invoices/:id/edit
func (h *InvoiceHandler) EditForm(c *gin.Context) {
	data, err := h.queries.GetEditFormData(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Create handles the create form submission
// POST /dashboard/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	result, err := h.mutations.CreateInvoice(c.Request.Context(), nil, form)
	h.respond(c, result, err)
}

// Update handles the edit form submission
// POST /dashboard/invoices/:id/edit, PUT /dashboard/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	result, err := h.mutations.UpdateInvoice(c.Request.Context(), c.Param("id"), form)
	h.respond(c, result, err)
}

// Delete removes an invoice in place
// POST /dashboard/invoices/:id/delete, DELETE /dashboard/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	result, err := h.mutations.DeleteInvoice(c.Request.Context(), c.Param("id"))
	h.respond(c, result, err)
}

func (h *InvoiceHandler) bindForm(c *gin.Context) (invoicing.FormFields, bool) {
	values, ok := h.PostValues(c)
	if !ok {
		return nil, false
	}
	return invoicing.FormFieldsFromValues(values, h.mutations.FormFieldNames()...), true
}

// respond turns an action result into a response: a redirect becomes a 303,
// a form state is sent back for re-rendering and a completed action is a 204.
func (h *InvoiceHandler) respond(c *gin.Context, result *appinvoicing.ActionResult, err error) {
	switch {
	case err != nil:
		h.Propagate(c, err)
	case result.IsRedirect():
		h.SeeOther(c, result.RedirectTo)
	case result.State != nil:
		h.formState(c, result.State)
	default:
		h.NoContent(c)
	}
}

func (h *InvoiceHandler) formState(c *gin.Context, state *appinvoicing.FormState) {
	requestID := middleware.GetRequestID(c)
	if state.Errors.HasErrors() {
		resp := dto.NewValidationErrorResponse(state.Message, requestID, dto.ValidationDetailsFromFieldErrors(state.Errors))
		resp.Data = state
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeDatabase, state.Message, requestID)
	resp.Data = state
	c.JSON(http.StatusInternalServerError, resp)
}
