package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-listings/internal/form"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/dto"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// FormHandler обслуживает форму создания товара: поля, оплату, код и отправку.
type FormHandler struct {
	forms *form.Manager
}

func NewFormHandler(forms *form.Manager) *FormHandler {
	return &FormHandler{forms: forms}
}

// Open POST /listing-forms
func (h *FormHandler) Open(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	f, err := h.forms.Open(sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToFormStateResponse(f.State()))
}

// Get GET /listing-forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}
	response.Success(c, dto.ToFormStateResponse(f.State()))
}

// Patch PATCH /listing-forms/:id
func (h *FormHandler) Patch(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}

	var req dto.FormPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	state, err := f.Apply(req.ToPatch(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFormStateResponse(state))
}

// AcknowledgePayment POST /listing-forms/:id/payment
func (h *FormHandler) AcknowledgePayment(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}

	display, err := f.AcknowledgePayment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, display)
}

// Credential GET /listing-forms/:id/credential
func (h *FormHandler) Credential(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}

	display, live := f.Credential()
	if !live {
		response.Error(c, apperror.New(apperror.ErrCodeNotFound, "код не выдан или истёк, подтвердите оплату"))
		return
	}

	response.Success(c, display)
}

// Submit POST /listing-forms/:id/submit
func (h *FormHandler) Submit(c *gin.Context) {
	f, ok := h.lookup(c)
	if !ok {
		return
	}

	product, err := f.Submit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"product": dto.ToProductResponse(product),
		"form":    dto.ToFormStateResponse(f.State()),
	})
}

// Close DELETE /listing-forms/:id
func (h *FormHandler) Close(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	formID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.forms.Close(formID, sellerID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *FormHandler) lookup(c *gin.Context) (*form.Form, bool) {
	sellerID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	formID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	f, err := h.forms.Get(formID, sellerID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return f, true
}
