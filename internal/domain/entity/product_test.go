package entity_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

type stubCategories map[string][]string

func (s stubCategories) HasPrimary(primary string) bool {
	_, ok := s[primary]
	return ok
}

func (s stubCategories) HasSubcategory(primary, sub string) bool {
	for _, v := range s[primary] {
		if v == sub {
			return true
		}
	}
	return false
}

var testCategories = stubCategories{
	"Электроника": {"Смартфоны", "Аудио"},
	"Одежда":      {"Обувь"},
}

func validFields() entity.ListingFields {
	return entity.ListingFields{
		Name:            "Наушники Sony",
		Description:     "Беспроводные наушники с шумоподавлением",
		Price:           12990,
		Stock:           5,
		PrimaryCategory: "Электроника",
		SubCategory:     "Аудио",
		ImageURLs:       []string{"https://cdn.example.com/1.jpg"},
	}
}

func newProduct(t *testing.T, status valueobject.ListingStatus) *entity.Product {
	t.Helper()
	p, err := entity.NewProduct(uuid.New(), uuid.New(), validFields(), testCategories)
	require.NoError(t, err)
	p.Status = status
	return p
}

func strPtr(s string) *string { return &s }

func TestNewProduct_StartsAsDraft(t *testing.T) {
	id := uuid.New()
	p, err := entity.NewProduct(id, uuid.New(), validFields(), testCategories)
	require.NoError(t, err)

	assert.Equal(t, id, p.ID)
	assert.Equal(t, valueobject.ListingStatusDraft, p.Status)
	assert.Equal(t, []string{"https://cdn.example.com/1.jpg"}, p.ImageURLs)
	assert.Equal(t, 12990.0, p.Price.Amount)
}

func TestNewProduct_Validation(t *testing.T) {
	f := validFields()
	f.Name = "abc"
	f.Price = 50
	f.SubCategory = "Обувь"
	f.ImageURLs = nil

	_, err := entity.NewProduct(uuid.New(), uuid.New(), f, testCategories)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, entity.FieldName)
	assert.Contains(t, appErr.Fields, entity.FieldPrice)
	assert.Contains(t, appErr.Fields, entity.FieldSubCategory)
	assert.Contains(t, appErr.Fields, "image_urls[0]")
}

func TestProduct_EditWhilePendingRevertsToDraft(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusPendingReview)

	err := p.ApplyPatch(entity.ListingPatch{Name: strPtr("New Name")}, testCategories)
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.Name)
	assert.Equal(t, valueobject.ListingStatusDraft, p.Status)
}

func TestProduct_EditWhilePendingRevertsEvenWithSameValues(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusPendingReview)

	err := p.ApplyPatch(entity.ListingPatch{Name: strPtr(p.Name)}, testCategories)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusDraft, p.Status)
}

func TestProduct_EditKeepsOtherStatuses(t *testing.T) {
	for _, s := range []valueobject.ListingStatus{valueobject.ListingStatusDraft, valueobject.ListingStatusRejected, valueobject.ListingStatusArchived} {
		p := newProduct(t, s)
		require.NoError(t, p.ApplyPatch(entity.ListingPatch{Name: strPtr("Другое имя")}, testCategories))
		assert.Equal(t, s, p.Status)
	}
}

func TestProduct_EditBlockedWhenActive(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusActive)

	err := p.ApplyPatch(entity.ListingPatch{Name: strPtr("New Name")}, testCategories)
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))
	assert.Equal(t, "Наушники Sony", p.Name)
}

func TestProduct_InvalidPatchDoesNotMutate(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusPendingReview)

	err := p.ApplyPatch(entity.ListingPatch{Name: strPtr("x")}, testCategories)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, valueobject.ListingStatusPendingReview, p.Status)
	assert.Equal(t, "Наушники Sony", p.Name)
}

func TestProduct_PatchPrimaryCategoryResetsSubcategory(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusDraft)

	err := p.ApplyPatch(entity.ListingPatch{PrimaryCategory: strPtr("Одежда")}, testCategories)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	err = p.ApplyPatch(entity.ListingPatch{PrimaryCategory: strPtr("Одежда"), SubCategory: strPtr("Обувь")}, testCategories)
	require.NoError(t, err)
	assert.Equal(t, "Обувь", p.SubCategory)
}

func TestProduct_EmptyPatchRejected(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusPendingReview)

	err := p.ApplyPatch(entity.ListingPatch{}, testCategories)
	require.Error(t, err)
	assert.Equal(t, valueobject.ListingStatusPendingReview, p.Status)
}

func TestProduct_SubmitForReview(t *testing.T) {
	for _, s := range []valueobject.ListingStatus{valueobject.ListingStatusDraft, valueobject.ListingStatusRejected} {
		p := newProduct(t, s)
		p.RejectionReason = strPtr("плохие фото")
		require.NoError(t, p.SubmitForReview())
		assert.Equal(t, valueobject.ListingStatusPendingReview, p.Status)
		assert.Nil(t, p.RejectionReason)
	}

	for _, s := range []valueobject.ListingStatus{valueobject.ListingStatusPendingReview, valueobject.ListingStatusActive, valueobject.ListingStatusArchived} {
		p := newProduct(t, s)
		err := p.SubmitForReview()
		require.Error(t, err, "status %s", s)
		assert.True(t, apperror.IsIllegalTransition(err))
		assert.Equal(t, s, p.Status)
	}
}

func TestProduct_ActiveDeleteRequiresUnpublish(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusActive)

	err := p.EnsureDeletable()
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))
	assert.Contains(t, err.Error(), "снимите")

	require.NoError(t, p.Unpublish())
	assert.Equal(t, valueobject.ListingStatusDraft, p.Status)
	assert.NoError(t, p.EnsureDeletable())
}

func TestProduct_UnpublishOnlyFromActive(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusDraft)
	err := p.Unpublish()
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))
}

func TestProduct_Moderation(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusPendingReview)
	require.NoError(t, p.Approve())
	assert.Equal(t, valueobject.ListingStatusActive, p.Status)
	assert.Error(t, p.Approve())

	p = newProduct(t, valueobject.ListingStatusPendingReview)
	require.NoError(t, p.Reject("нет фото товара"))
	assert.Equal(t, valueobject.ListingStatusRejected, p.Status)
	require.NotNil(t, p.RejectionReason)
	assert.Equal(t, "нет фото товара", *p.RejectionReason)

	p = newProduct(t, valueobject.ListingStatusDraft)
	assert.True(t, apperror.IsIllegalTransition(p.Reject("")))
}

func TestProduct_Archive(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusActive)
	require.NoError(t, p.Archive())
	assert.Equal(t, valueobject.ListingStatusArchived, p.Status)
	assert.True(t, apperror.IsIllegalTransition(p.Archive()))
	assert.NoError(t, p.EnsureDeletable())
}

func TestProduct_IsOwnedBy(t *testing.T) {
	p := newProduct(t, valueobject.ListingStatusDraft)
	assert.True(t, p.IsOwnedBy(p.SellerID))
	assert.False(t, p.IsOwnedBy(uuid.New()))
}
