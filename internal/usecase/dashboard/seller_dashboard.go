package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

const (
	// RecentItemsLimit - сколько последних товаров попадает в сводку.
	RecentItemsLimit = 50
	cacheTTL         = 30 * time.Second
)

// Counters - число товаров продавца по статусам.
type Counters struct {
	Draft         int `json:"draft"`
	PendingReview int `json:"pending_review"`
	Active        int `json:"active"`
	Rejected      int `json:"rejected"`
	Archived      int `json:"archived"`
	Total         int `json:"total"`
}

// Item - товар и действия, доступные в его текущем статусе.
type Item struct {
	Product *entity.Product
	Actions valueobject.Capabilities
}

type Summary struct {
	Counters Counters
	Items    []Item
}

// Cache - кэш сводок. Ключи строятся из sellerID.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error)
}

type SellerDashboardUseCase struct {
	productRepo repository.ProductRepository
	cache       Cache
	cacheKey    func(sellerID uuid.UUID) string
}

// NewSellerDashboardUseCase: cache может быть nil, тогда сводка считается на каждый запрос.
func NewSellerDashboardUseCase(productRepo repository.ProductRepository, cache Cache, cacheKey func(uuid.UUID) string) *SellerDashboardUseCase {
	return &SellerDashboardUseCase{productRepo: productRepo, cache: cache, cacheKey: cacheKey}
}

func (uc *SellerDashboardUseCase) Execute(ctx context.Context, sellerID uuid.UUID) (*Summary, error) {
	if uc.cache == nil || uc.cacheKey == nil {
		return uc.build(ctx, sellerID)
	}

	value, err := uc.cache.GetOrSet(ctx, uc.cacheKey(sellerID), cacheTTL, func() (interface{}, error) {
		return uc.build(ctx, sellerID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Summary), nil
}

func (uc *SellerDashboardUseCase) build(ctx context.Context, sellerID uuid.UUID) (*Summary, error) {
	counts, err := uc.productRepo.CountByStatus(ctx, sellerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать товары")
	}

	products, err := uc.productRepo.FindBySellerID(ctx, sellerID, repository.ProductFilter{Limit: RecentItemsLimit})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить товары")
	}

	summary := &Summary{
		Counters: countersFrom(counts),
		Items:    make([]Item, 0, len(products)),
	}
	for _, p := range products {
		summary.Items = append(summary.Items, Item{Product: p, Actions: p.Capabilities()})
	}
	return summary, nil
}

func countersFrom(counts map[valueobject.ListingStatus]int) Counters {
	c := Counters{
		Draft:         counts[valueobject.ListingStatusDraft],
		PendingReview: counts[valueobject.ListingStatusPendingReview],
		Active:        counts[valueobject.ListingStatusActive],
		Rejected:      counts[valueobject.ListingStatusRejected],
		Archived:      counts[valueobject.ListingStatusArchived],
	}
	c.Total = c.Draft + c.PendingReview + c.Active + c.Rejected + c.Archived
	return c
}
