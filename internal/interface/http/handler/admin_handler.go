package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/dto"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
)

// AdminHandler - решения модератора. Роль проверяется в роутере.
type AdminHandler struct {
	approveUC *listing.ApproveProductUseCase
	rejectUC  *listing.RejectProductUseCase
	archiveUC *listing.ArchiveProductUseCase
}

func NewAdminHandler(
	approveUC *listing.ApproveProductUseCase,
	rejectUC *listing.RejectProductUseCase,
	archiveUC *listing.ArchiveProductUseCase,
) *AdminHandler {
	return &AdminHandler{approveUC: approveUC, rejectUC: rejectUC, archiveUC: archiveUC}
}

func (h *AdminHandler) Approve(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.approveUC.Execute(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}

func (h *AdminHandler) Reject(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	// Причина необязательна: пустое тело означает отклонение без причины.
	var req dto.RejectProductRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	product, err := h.rejectUC.Execute(c.Request.Context(), productID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}

func (h *AdminHandler) Archive(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.archiveUC.Execute(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}
