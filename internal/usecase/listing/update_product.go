package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
)

type PatchProductInput struct {
	ProductID uuid.UUID
	SellerID  uuid.UUID
	Patch     entity.ListingPatch
}

// PatchProductUseCase меняет поля товара. Товар на модерации возвращается
// в черновик; активный товар редактировать нельзя.
type PatchProductUseCase struct {
	productRepo repository.ProductRepository
	categories  entity.CategoryChecker
	cache       CacheInvalidator
}

func NewPatchProductUseCase(productRepo repository.ProductRepository, categories entity.CategoryChecker, cache CacheInvalidator) *PatchProductUseCase {
	return &PatchProductUseCase{productRepo: productRepo, categories: categories, cache: invalidatorOrNoop(cache)}
}

func (uc *PatchProductUseCase) Execute(ctx context.Context, input PatchProductInput) (*entity.Product, error) {
	product, err := findOwnedProduct(ctx, uc.productRepo, input.ProductID, input.SellerID)
	if err != nil {
		return nil, err
	}

	before := product.Status
	updated, err := transition{repo: uc.productRepo, cache: uc.cache}.apply(ctx, product, func(p *entity.Product) error {
		return p.ApplyPatch(input.Patch, uc.categories)
	})
	if err != nil {
		return nil, err
	}

	if before != updated.Status {
		logger.L().WithFields(logrus.Fields{
			"product_id": updated.ID,
			"from":       before,
			"to":         updated.Status,
		}).Info("listing: товар возвращён в черновик после изменения")
	}
	return updated, nil
}

type DeleteProductUseCase struct {
	productRepo repository.ProductRepository
	cache       CacheInvalidator
}

func NewDeleteProductUseCase(productRepo repository.ProductRepository, cache CacheInvalidator) *DeleteProductUseCase {
	return &DeleteProductUseCase{productRepo: productRepo, cache: invalidatorOrNoop(cache)}
}

func (uc *DeleteProductUseCase) Execute(ctx context.Context, productID, sellerID uuid.UUID) error {
	product, err := findOwnedProduct(ctx, uc.productRepo, productID, sellerID)
	if err != nil {
		return err
	}

	if err := product.EnsureDeletable(); err != nil {
		return err
	}

	if err := uc.productRepo.Delete(ctx, product.ID); err != nil {
		return storageError(err, "не удалось удалить товар")
	}

	uc.cache.InvalidateSellerCache(product.SellerID)
	return nil
}
