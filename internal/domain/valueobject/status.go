package valueobject

import "github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"

type ListingStatus string

const (
	ListingStatusDraft         ListingStatus = "draft"
	ListingStatusPendingReview ListingStatus = "pending_review"
	ListingStatusActive        ListingStatus = "active"
	ListingStatusRejected      ListingStatus = "rejected"
	ListingStatusArchived      ListingStatus = "archived"
)

// AllListingStatuses в порядке отображения на дашборде.
var AllListingStatuses = []ListingStatus{
	ListingStatusDraft,
	ListingStatusPendingReview,
	ListingStatusActive,
	ListingStatusRejected,
	ListingStatusArchived,
}

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusDraft, ListingStatusPendingReview, ListingStatusActive, ListingStatusRejected, ListingStatusArchived:
		return true
	}
	return false
}

var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingStatusDraft:         {ListingStatusPendingReview, ListingStatusArchived},
	ListingStatusRejected:      {ListingStatusPendingReview, ListingStatusArchived},
	ListingStatusPendingReview: {ListingStatusActive, ListingStatusRejected, ListingStatusDraft, ListingStatusArchived},
	ListingStatusActive:        {ListingStatusDraft, ListingStatusArchived},
	ListingStatusArchived:      {},
}

func (s ListingStatus) CanTransitionTo(newStatus ListingStatus) bool {
	allowed, ok := listingTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewListingStatus(status string) (ListingStatus, error) {
	s := ListingStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус товара")
	}
	return s, nil
}
