package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

type GetProductUseCase struct {
	productRepo repository.ProductRepository
}

func NewGetProductUseCase(productRepo repository.ProductRepository) *GetProductUseCase {
	return &GetProductUseCase{productRepo: productRepo}
}

func (uc *GetProductUseCase) Execute(ctx context.Context, productID, sellerID uuid.UUID) (*entity.Product, error) {
	return findOwnedProduct(ctx, uc.productRepo, productID, sellerID)
}

type ListMyProductsInput struct {
	SellerID uuid.UUID
	Status   string
	Limit    int
	Offset   int
}

type ListMyProductsUseCase struct {
	productRepo repository.ProductRepository
}

func NewListMyProductsUseCase(productRepo repository.ProductRepository) *ListMyProductsUseCase {
	return &ListMyProductsUseCase{productRepo: productRepo}
}

func (uc *ListMyProductsUseCase) Execute(ctx context.Context, input ListMyProductsInput) ([]*entity.Product, error) {
	if input.Status != "" {
		if _, err := valueobject.NewListingStatus(input.Status); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "неизвестный статус")
		}
	}
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.productRepo.FindBySellerID(ctx, input.SellerID, repository.ProductFilter{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
}
