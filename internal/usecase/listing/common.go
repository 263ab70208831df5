package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// CacheInvalidator сбрасывает кэшированные сводки продавца после изменения его товаров.
type CacheInvalidator interface {
	InvalidateSellerCache(sellerID uuid.UUID)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateSellerCache(uuid.UUID) {}

func invalidatorOrNoop(c CacheInvalidator) CacheInvalidator {
	if c == nil {
		return noopInvalidator{}
	}
	return c
}

func findProduct(ctx context.Context, repo repository.ProductRepository, productID uuid.UUID) (*entity.Product, error) {
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.ErrProductNotFound
	}
	return product, nil
}

func findOwnedProduct(ctx context.Context, repo repository.ProductRepository, productID, sellerID uuid.UUID) (*entity.Product, error) {
	product, err := findProduct(ctx, repo, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(sellerID) {
		return nil, apperror.ErrForbidden
	}
	return product, nil
}

// transition применяет переход к загруженному товару и сохраняет результат
// при условии, что статус в хранилище не изменился с момента чтения.
type transition struct {
	repo  repository.ProductRepository
	cache CacheInvalidator
}

func (t transition) apply(ctx context.Context, product *entity.Product, change func(*entity.Product) error) (*entity.Product, error) {
	loaded := product.Status
	if err := change(product); err != nil {
		return nil, err
	}
	if err := t.repo.Update(ctx, product, loaded); err != nil {
		return nil, storageError(err, "не удалось обновить товар")
	}
	t.cache.InvalidateSellerCache(product.SellerID)
	return product, nil
}

// storageError пропускает доменные ошибки хранилища как есть,
// остальное оборачивает в DATABASE_ERROR.
func storageError(err error, message string) error {
	if apperror.IsNotFound(err) || apperror.IsConflict(err) || apperror.IsIllegalTransition(err) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}
