package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// MemoryProductRepository хранит товары в памяти процесса.
// Используется в development без базы и в тестах.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*entity.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[uuid.UUID]*entity.Product)}
}

func (r *MemoryProductRepository) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[p.ID]; exists {
		return apperror.New(apperror.ErrCodeConflict, "товар уже создан")
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p *entity.Product, expected valueobject.ListingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.products[p.ID]
	if !exists {
		return apperror.ErrProductNotFound
	}
	if stored.Status != expected {
		return apperror.ErrProductStateChanged
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.products[id]
	if !exists {
		return apperror.ErrProductNotFound
	}
	if stored.Status == valueobject.ListingStatusActive {
		return apperror.ErrProductPublished
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperror.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *MemoryProductRepository) FindBySellerID(_ context.Context, sellerID uuid.UUID, filter repository.ProductFilter) ([]*entity.Product, error) {
	r.mu.RLock()
	var result []*entity.Product
	for _, p := range r.products {
		if p.SellerID != sellerID {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		result = append(result, cloneProduct(p))
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*entity.Product{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *MemoryProductRepository) CountByStatus(_ context.Context, sellerID uuid.UUID) (map[valueobject.ListingStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[valueobject.ListingStatus]int, len(valueobject.AllListingStatuses))
	for _, s := range valueobject.AllListingStatuses {
		counts[s] = 0
	}
	for _, p := range r.products {
		if p.SellerID == sellerID {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.ImageURLs = append([]string(nil), p.ImageURLs...)
	if p.RejectionReason != nil {
		reason := *p.RejectionReason
		c.RejectionReason = &reason
	}
	return &c
}
