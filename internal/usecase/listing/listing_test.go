package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/marketplace-listings/internal/catalog"
	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/infrastructure/persistence"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/listing"
)

type recordingInvalidator struct {
	sellers []uuid.UUID
}

func (r *recordingInvalidator) InvalidateSellerCache(sellerID uuid.UUID) {
	r.sellers = append(r.sellers, sellerID)
}

type failingRepository struct {
	*persistence.MemoryProductRepository
}

func (failingRepository) Update(context.Context, *entity.Product, valueobject.ListingStatus) error {
	return errors.New("connection reset")
}

// approvingRepository одобряет товар сразу после того, как отдал его снимок,
// имитируя модератора, успевшего между чтением и записью продавца.
type approvingRepository struct {
	*persistence.MemoryProductRepository
	t     *testing.T
	fired bool
}

func (r *approvingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	p, err := r.MemoryProductRepository.FindByID(ctx, id)
	if err != nil || r.fired {
		return p, err
	}
	r.fired = true
	_, approveErr := listing.NewApproveProductUseCase(r.MemoryProductRepository, nil).Execute(ctx, id)
	require.NoError(r.t, approveErr)
	return p, nil
}

func validFields() entity.ListingFields {
	return entity.ListingFields{
		Name:            "Наушники Sony WH-1000XM5",
		Description:     "Беспроводные наушники с активным шумоподавлением",
		Price:           29990,
		Stock:           3,
		PrimaryCategory: "Электроника",
		SubCategory:     "Аудио",
		ImageURLs:       []string{"https://cdn.example.com/wh1000.jpg"},
	}
}

type fixture struct {
	repo       *persistence.MemoryProductRepository
	categories *catalog.Registry
	cache      *recordingInvalidator
	sellerID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := catalog.Default()
	require.NoError(t, err)
	return &fixture{
		repo:       persistence.NewMemoryProductRepository(),
		categories: reg,
		cache:      &recordingInvalidator{},
		sellerID:   uuid.New(),
	}
}

func (f *fixture) create(t *testing.T, status valueobject.ListingStatus) *entity.Product {
	t.Helper()
	uc := listing.NewCreateProductUseCase(f.repo, f.categories, f.cache)
	p, err := uc.Execute(context.Background(), listing.CreateProductInput{
		ProductID: uuid.New(),
		SellerID:  f.sellerID,
		Fields:    validFields(),
	})
	require.NoError(t, err)
	if status != valueobject.ListingStatusDraft {
		p.Status = status
		require.NoError(t, f.repo.Update(context.Background(), p, valueobject.ListingStatusDraft))
	}
	return p
}

func TestCreateProductUseCase_Success(t *testing.T) {
	f := newFixture(t)
	productID := uuid.New()

	uc := listing.NewCreateProductUseCase(f.repo, f.categories, f.cache)
	p, err := uc.Execute(context.Background(), listing.CreateProductInput{
		ProductID: productID,
		SellerID:  f.sellerID,
		Fields:    validFields(),
	})
	require.NoError(t, err)
	assert.Equal(t, productID, p.ID)
	assert.Equal(t, valueobject.ListingStatusDraft, p.Status)
	assert.Equal(t, []uuid.UUID{f.sellerID}, f.cache.sellers)

	stored, err := f.repo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, "Наушники Sony WH-1000XM5", stored.Name)
}

func TestCreateProductUseCase_ValidationError(t *testing.T) {
	f := newFixture(t)
	fields := validFields()
	fields.SubCategory = "Ноутбуки-не-отсюда"
	fields.Price = 50

	uc := listing.NewCreateProductUseCase(f.repo, f.categories, nil)
	_, err := uc.Execute(context.Background(), listing.CreateProductInput{ProductID: uuid.New(), SellerID: f.sellerID, Fields: fields})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, entity.FieldSubCategory)
	assert.Contains(t, appErr.Fields, entity.FieldPrice)
}

func TestCreateProductUseCase_DuplicateID(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusDraft)

	uc := listing.NewCreateProductUseCase(f.repo, f.categories, nil)
	_, err := uc.Execute(context.Background(), listing.CreateProductInput{ProductID: p.ID, SellerID: f.sellerID, Fields: validFields()})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestGetProductUseCase_Ownership(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusDraft)
	uc := listing.NewGetProductUseCase(f.repo)

	got, err := uc.Execute(context.Background(), p.ID, f.sellerID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = uc.Execute(context.Background(), p.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	_, err = uc.Execute(context.Background(), uuid.New(), f.sellerID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListMyProductsUseCase_FiltersAndValidates(t *testing.T) {
	f := newFixture(t)
	f.create(t, valueobject.ListingStatusDraft)
	f.create(t, valueobject.ListingStatusActive)
	f.create(t, valueobject.ListingStatusActive)

	uc := listing.NewListMyProductsUseCase(f.repo)
	all, err := uc.Execute(context.Background(), listing.ListMyProductsInput{SellerID: f.sellerID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := uc.Execute(context.Background(), listing.ListMyProductsInput{SellerID: f.sellerID, Status: "active"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = uc.Execute(context.Background(), listing.ListMyProductsInput{SellerID: f.sellerID, Status: "deleted"})
	assert.True(t, apperror.IsValidation(err))
}

func TestPatchProductUseCase_PendingRevertsToDraft(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusPendingReview)
	name := "New Name"

	uc := listing.NewPatchProductUseCase(f.repo, f.categories, f.cache)
	updated, err := uc.Execute(context.Background(), listing.PatchProductInput{
		ProductID: p.ID,
		SellerID:  f.sellerID,
		Patch:     entity.ListingPatch{Name: &name},
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusDraft, updated.Status)
	assert.Equal(t, "New Name", updated.Name)

	stored, err := f.repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusDraft, stored.Status)
}

func TestPatchProductUseCase_ActiveBlocked(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusActive)
	name := "New Name"

	uc := listing.NewPatchProductUseCase(f.repo, f.categories, nil)
	_, err := uc.Execute(context.Background(), listing.PatchProductInput{ProductID: p.ID, SellerID: f.sellerID, Patch: entity.ListingPatch{Name: &name}})
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))
}

func TestPatchProductUseCase_ForeignSeller(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusDraft)
	name := "New Name"

	uc := listing.NewPatchProductUseCase(f.repo, f.categories, nil)
	_, err := uc.Execute(context.Background(), listing.PatchProductInput{ProductID: p.ID, SellerID: uuid.New(), Patch: entity.ListingPatch{Name: &name}})
	assert.True(t, apperror.IsForbidden(err))
}

func TestPatchProductUseCase_DatabaseError(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusDraft)
	name := "New Name"

	uc := listing.NewPatchProductUseCase(failingRepository{f.repo}, f.categories, nil)
	_, err := uc.Execute(context.Background(), listing.PatchProductInput{ProductID: p.ID, SellerID: f.sellerID, Patch: entity.ListingPatch{Name: &name}})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeDatabaseError, appErr.Code)
}

func TestDeleteActiveRequiresUnpublish(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusActive)
	ctx := context.Background()

	del := listing.NewDeleteProductUseCase(f.repo, f.cache)
	err := del.Execute(ctx, p.ID, f.sellerID)
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))

	unpublished, err := listing.NewUnpublishProductUseCase(f.repo, f.cache).Execute(ctx, p.ID, f.sellerID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusDraft, unpublished.Status)

	require.NoError(t, del.Execute(ctx, p.ID, f.sellerID))
	_, err = f.repo.FindByID(ctx, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteProductUseCase_ApprovedAfterRead(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusPendingReview)
	ctx := context.Background()

	repo := &approvingRepository{MemoryProductRepository: f.repo, t: t}
	err := listing.NewDeleteProductUseCase(repo, f.cache).Execute(ctx, p.ID, f.sellerID)
	require.Error(t, err)
	assert.True(t, apperror.IsIllegalTransition(err))

	stored, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusActive, stored.Status)
}

func TestPatchProductUseCase_ApprovedAfterRead(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusPendingReview)
	ctx := context.Background()
	name := "New Name"

	repo := &approvingRepository{MemoryProductRepository: f.repo, t: t}
	_, err := listing.NewPatchProductUseCase(repo, f.categories, nil).Execute(ctx, listing.PatchProductInput{
		ProductID: p.ID,
		SellerID:  f.sellerID,
		Patch:     entity.ListingPatch{Name: &name},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	stored, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusActive, stored.Status)
	assert.Equal(t, "Наушники Sony WH-1000XM5", stored.Name)
}

func TestMemoryProductRepository_ConditionalWrites(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, valueobject.ListingStatusActive)
	ctx := context.Background()

	p.Status = valueobject.ListingStatusDraft
	err := f.repo.Update(ctx, p, valueobject.ListingStatusPendingReview)
	assert.True(t, apperror.IsConflict(err))

	assert.True(t, apperror.IsIllegalTransition(f.repo.Delete(ctx, p.ID)))
	assert.True(t, apperror.IsNotFound(f.repo.Delete(ctx, uuid.New())))
	assert.True(t, apperror.IsNotFound(f.repo.Update(ctx, &entity.Product{ID: uuid.New()}, valueobject.ListingStatusDraft)))
}

func TestSubmitForReviewUseCase(t *testing.T) {
	tests := []struct {
		name    string
		status  valueobject.ListingStatus
		wantErr bool
	}{
		{"draft", valueobject.ListingStatusDraft, false},
		{"rejected", valueobject.ListingStatusRejected, false},
		{"pending", valueobject.ListingStatusPendingReview, true},
		{"active", valueobject.ListingStatusActive, true},
		{"archived", valueobject.ListingStatusArchived, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.create(t, tt.status)

			got, err := listing.NewSubmitForReviewUseCase(f.repo, nil).Execute(context.Background(), p.ID, f.sellerID)
			if tt.wantErr {
				assert.True(t, apperror.IsIllegalTransition(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, valueobject.ListingStatusPendingReview, got.Status)
		})
	}
}

func TestModeration_ApproveRejectArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	approved := f.create(t, valueobject.ListingStatusPendingReview)
	got, err := listing.NewApproveProductUseCase(f.repo, f.cache).Execute(ctx, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusActive, got.Status)

	_, err = listing.NewApproveProductUseCase(f.repo, nil).Execute(ctx, approved.ID)
	assert.True(t, apperror.IsIllegalTransition(err), "повторное одобрение")

	rejected := f.create(t, valueobject.ListingStatusPendingReview)
	got, err = listing.NewRejectProductUseCase(f.repo, nil).Execute(ctx, rejected.ID, "  нет фото товара ")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "нет фото товара", *got.RejectionReason)

	resubmitted, err := listing.NewSubmitForReviewUseCase(f.repo, nil).Execute(ctx, rejected.ID, f.sellerID)
	require.NoError(t, err)
	assert.Nil(t, resubmitted.RejectionReason)

	archive := listing.NewArchiveProductUseCase(f.repo, nil)
	got, err = archive.Execute(ctx, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusArchived, got.Status)

	_, err = archive.Execute(ctx, approved.ID)
	assert.True(t, apperror.IsIllegalTransition(err))

	_, err = archive.Execute(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
