package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
)

type SubmitForReviewUseCase struct {
	productRepo repository.ProductRepository
	cache       CacheInvalidator
}

func NewSubmitForReviewUseCase(productRepo repository.ProductRepository, cache CacheInvalidator) *SubmitForReviewUseCase {
	return &SubmitForReviewUseCase{productRepo: productRepo, cache: invalidatorOrNoop(cache)}
}

func (uc *SubmitForReviewUseCase) Execute(ctx context.Context, productID, sellerID uuid.UUID) (*entity.Product, error) {
	product, err := findOwnedProduct(ctx, uc.productRepo, productID, sellerID)
	if err != nil {
		return nil, err
	}
	return transition{repo: uc.productRepo, cache: uc.cache}.apply(ctx, product, (*entity.Product).SubmitForReview)
}

type UnpublishProductUseCase struct {
	productRepo repository.ProductRepository
	cache       CacheInvalidator
}

func NewUnpublishProductUseCase(productRepo repository.ProductRepository, cache CacheInvalidator) *UnpublishProductUseCase {
	return &UnpublishProductUseCase{productRepo: productRepo, cache: invalidatorOrNoop(cache)}
}

func (uc *UnpublishProductUseCase) Execute(ctx context.Context, productID, sellerID uuid.UUID) (*entity.Product, error) {
	product, err := findOwnedProduct(ctx, uc.productRepo, productID, sellerID)
	if err != nil {
		return nil, err
	}
	return transition{repo: uc.productRepo, cache: uc.cache}.apply(ctx, product, (*entity.Product).Unpublish)
}

// Модерация: вызывается администратором, владение не проверяется.

type ApproveProductUseCase struct {
	productRepo repository.ProductRepository
	cache       CacheInvalidator
}

func NewApproveProductUseCase(productRepo repository.ProductRepository, cache CacheInvalidator) *ApproveProductUseCase {
	return &ApproveProductUseCase{productRepo: productRepo, cache: invalidatorOrNoop(cache)}
}

func (uc *ApproveProductUseCase) Execute(ctx context.Context, productID uuid.UUID) (*entity.Product, error) {
	product, err := findProduct(ctx, uc.productRepo, productID)
	if err != nil {
		return nil, err
	}
	return transition{repo: uc.productRepo, cache: uc.cache}.apply(ctx, product, (*entity.Product).Approve)
}

type RejectProductUseCase struct {
	productRepo repository.ProductRepository
	cache       CacheInvalidator
}

func NewRejectProductUseCase(productRepo repository.ProductRepository, cache CacheInvalidator) *RejectProductUseCase {
	return &RejectProductUseCase{productRepo: productRepo, cache: invalidatorOrNoop(cache)}
}

func (uc *RejectProductUseCase) Execute(ctx context.Context, productID uuid.UUID, reason string) (*entity.Product, error) {
	product, err := findProduct(ctx, uc.productRepo, productID)
	if err != nil {
		return nil, err
	}
	return transition{repo: uc.productRepo, cache: uc.cache}.apply(ctx, product, func(p *entity.Product) error {
		return p.Reject(reason)
	})
}

type ArchiveProductUseCase struct {
	productRepo repository.ProductRepository
	cache       CacheInvalidator
}

func NewArchiveProductUseCase(productRepo repository.ProductRepository, cache CacheInvalidator) *ArchiveProductUseCase {
	return &ArchiveProductUseCase{productRepo: productRepo, cache: invalidatorOrNoop(cache)}
}

func (uc *ArchiveProductUseCase) Execute(ctx context.Context, productID uuid.UUID) (*entity.Product, error) {
	product, err := findProduct(ctx, uc.productRepo, productID)
	if err != nil {
		return nil, err
	}
	return transition{repo: uc.productRepo, cache: uc.cache}.apply(ctx, product, (*entity.Product).Archive)
}
