package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesFor(t *testing.T) {
	for _, s := range AllListingStatuses {
		caps := CapabilitiesFor(s)

		assert.Equal(t, s != ListingStatusActive, caps.CanEdit, "edit for %s", s)
		assert.Equal(t, caps.CanEdit, caps.CanDelete, "edit == delete for %s", s)
		assert.Equal(t, s == ListingStatusDraft || s == ListingStatusRejected, caps.CanSubmitForReview, "submit for %s", s)
		assert.Equal(t, s == ListingStatusActive, caps.CanUnpublish, "unpublish for %s", s)
		assert.Equal(t, caps, s.Capabilities())
	}
}

func TestListingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to ListingStatus
		ok       bool
	}{
		{ListingStatusDraft, ListingStatusPendingReview, true},
		{ListingStatusRejected, ListingStatusPendingReview, true},
		{ListingStatusPendingReview, ListingStatusActive, true},
		{ListingStatusPendingReview, ListingStatusRejected, true},
		{ListingStatusPendingReview, ListingStatusDraft, true},
		{ListingStatusActive, ListingStatusDraft, true},
		{ListingStatusActive, ListingStatusPendingReview, false},
		{ListingStatusDraft, ListingStatusActive, false},
		{ListingStatusArchived, ListingStatusDraft, false},
		{ListingStatusArchived, ListingStatusArchived, false},
		{ListingStatus("bogus"), ListingStatusDraft, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestNewListingStatus(t *testing.T) {
	s, err := NewListingStatus("pending_review")
	assert.NoError(t, err)
	assert.Equal(t, ListingStatusPendingReview, s)

	_, err = NewListingStatus("published")
	assert.Error(t, err)
}

func TestNewPrice(t *testing.T) {
	_, err := NewPrice(99.99)
	assert.Error(t, err)

	p, err := NewPrice(100)
	assert.NoError(t, err)
	assert.Equal(t, DefaultCurrency, p.Currency)

	_, err = NewPrice(10000000)
	assert.NoError(t, err)

	_, err = NewPrice(10000000.01)
	assert.Error(t, err)
}
