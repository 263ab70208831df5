package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/dto"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
)

type ProductHandler struct {
	getProductUC     *listing.GetProductUseCase
	listMyProductsUC *listing.ListMyProductsUseCase
	patchProductUC   *listing.PatchProductUseCase
	deleteProductUC  *listing.DeleteProductUseCase
	submitUC         *listing.SubmitForReviewUseCase
	unpublishUC      *listing.UnpublishProductUseCase
}

func NewProductHandler(
	getProductUC *listing.GetProductUseCase,
	listMyProductsUC *listing.ListMyProductsUseCase,
	patchProductUC *listing.PatchProductUseCase,
	deleteProductUC *listing.DeleteProductUseCase,
	submitUC *listing.SubmitForReviewUseCase,
	unpublishUC *listing.UnpublishProductUseCase,
) *ProductHandler {
	return &ProductHandler{
		getProductUC:     getProductUC,
		listMyProductsUC: listMyProductsUC,
		patchProductUC:   patchProductUC,
		deleteProductUC:  deleteProductUC,
		submitUC:         submitUC,
		unpublishUC:      unpublishUC,
	}
}

// ListMyProducts GET /products?status=&limit=&offset=
func (h *ProductHandler) ListMyProducts(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	products, err := h.listMyProductsUC.Execute(c.Request.Context(), listing.ListMyProductsInput{
		SellerID: sellerID,
		Status:   c.Query("status"),
		Limit:    parseIntQuery(c, "limit", 20),
		Offset:   parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponses(products))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	sellerID, productID, ok := ownerAndProduct(c)
	if !ok {
		return
	}

	product, err := h.getProductUC.Execute(c.Request.Context(), productID, sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}

func (h *ProductHandler) PatchProduct(c *gin.Context) {
	sellerID, productID, ok := ownerAndProduct(c)
	if !ok {
		return
	}

	var req dto.ListingPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	product, err := h.patchProductUC.Execute(c.Request.Context(), listing.PatchProductInput{
		ProductID: productID,
		SellerID:  sellerID,
		Patch:     req.ToPatch(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	sellerID, productID, ok := ownerAndProduct(c)
	if !ok {
		return
	}

	if err := h.deleteProductUC.Execute(c.Request.Context(), productID, sellerID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SubmitForReview POST /products/:id/submit
func (h *ProductHandler) SubmitForReview(c *gin.Context) {
	sellerID, productID, ok := ownerAndProduct(c)
	if !ok {
		return
	}

	product, err := h.submitUC.Execute(c.Request.Context(), productID, sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}

// Unpublish POST /products/:id/unpublish
func (h *ProductHandler) Unpublish(c *gin.Context) {
	sellerID, productID, ok := ownerAndProduct(c)
	if !ok {
		return
	}

	product, err := h.unpublishUC.Execute(c.Request.Context(), productID, sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProductResponse(product))
}
