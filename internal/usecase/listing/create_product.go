package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

type CreateProductInput struct {
	ProductID uuid.UUID
	SellerID  uuid.UUID
	Fields    entity.ListingFields
}

// CreateProductUseCase сохраняет новый товар в статусе черновика.
// Вызывается формой только после успешного погашения кода.
type CreateProductUseCase struct {
	productRepo repository.ProductRepository
	categories  entity.CategoryChecker
	cache       CacheInvalidator
}

func NewCreateProductUseCase(productRepo repository.ProductRepository, categories entity.CategoryChecker, cache CacheInvalidator) *CreateProductUseCase {
	return &CreateProductUseCase{productRepo: productRepo, categories: categories, cache: invalidatorOrNoop(cache)}
}

func (uc *CreateProductUseCase) Execute(ctx context.Context, input CreateProductInput) (*entity.Product, error) {
	product, err := entity.NewProduct(input.ProductID, input.SellerID, input.Fields, uc.categories)
	if err != nil {
		return nil, err
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		if apperror.IsConflict(err) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать товар")
	}

	uc.cache.InvalidateSellerCache(product.SellerID)
	return product, nil
}
