package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// Update сохраняет товар, только если в хранилище он всё ещё в статусе expected.
	// Иначе возвращает apperror.ErrProductStateChanged.
	Update(ctx context.Context, product *entity.Product, expected valueobject.ListingStatus) error
	// Delete удаляет товар, если он не опубликован. Активный товар даёт
	// apperror.ErrProductPublished.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	FindBySellerID(ctx context.Context, sellerID uuid.UUID, filter ProductFilter) ([]*entity.Product, error)
	CountByStatus(ctx context.Context, sellerID uuid.UUID) (map[valueobject.ListingStatus]int, error)
}

type ProductFilter struct {
	Status string
	Limit  int
	Offset int
}
