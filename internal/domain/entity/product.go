package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

type Product struct {
	ID              uuid.UUID
	SellerID        uuid.UUID
	Name            string
	Description     string
	Price           valueobject.Money
	Stock           int
	PrimaryCategory string
	SubCategory     string
	ImageURLs       []string
	AIEnabled       bool
	Status          valueobject.ListingStatus
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProduct создаёт товар в статусе черновика. id выделяется заранее формой,
// к нему же был привязан код подтверждения.
func NewProduct(id, sellerID uuid.UUID, fields ListingFields, categories CategoryChecker) (*Product, error) {
	if id == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан идентификатор товара")
	}
	if sellerID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	fields = fields.Normalize()
	if errs := fields.Validate(categories); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	price, err := valueobject.NewPrice(fields.Price)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Product{
		ID:        id,
		SellerID:  sellerID,
		Price:     price,
		Status:    valueobject.ListingStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.setFields(fields)
	return p, nil
}

func (p *Product) setFields(f ListingFields) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price.Amount = f.Price
	if p.Price.Currency == "" {
		p.Price.Currency = valueobject.DefaultCurrency
	}
	p.Stock = f.Stock
	p.PrimaryCategory = f.PrimaryCategory
	p.SubCategory = f.SubCategory
	p.ImageURLs = f.FilledImageURLs()
	p.AIEnabled = f.AIEnabled
}

// Fields возвращает текущие содержательные поля товара.
func (p *Product) Fields() ListingFields {
	return ListingFields{
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.Amount,
		Stock:           p.Stock,
		PrimaryCategory: p.PrimaryCategory,
		SubCategory:     p.SubCategory,
		ImageURLs:       append([]string(nil), p.ImageURLs...),
		AIEnabled:       p.AIEnabled,
	}
}

// Capabilities - разрешённые действия в текущем статусе.
func (p *Product) Capabilities() valueobject.Capabilities {
	return valueobject.CapabilitiesFor(p.Status)
}

// ApplyPatch меняет поля товара. Любое изменение товара на модерации
// возвращает его в черновик в рамках того же вызова.
func (p *Product) ApplyPatch(patch ListingPatch, categories CategoryChecker) error {
	if !p.Capabilities().CanEdit {
		return apperror.IllegalTransition("товар опубликован: сначала снимите его с публикации, чтобы редактировать")
	}
	if patch.IsEmpty() {
		return apperror.New(apperror.ErrCodeValidation, "нет полей для обновления")
	}

	next := patch.ApplyTo(p.Fields()).Normalize()
	if errs := next.Validate(categories); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	p.setFields(next)
	if p.Status == valueobject.ListingStatusPendingReview {
		p.Status = valueobject.ListingStatusDraft
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) SubmitForReview() error {
	if !p.Capabilities().CanSubmitForReview {
		return apperror.IllegalTransition("отправить на модерацию можно только черновик или отклонённый товар")
	}
	p.Status = valueobject.ListingStatusPendingReview
	p.RejectionReason = nil
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) Unpublish() error {
	if !p.Capabilities().CanUnpublish {
		return apperror.IllegalTransition("снять с публикации можно только активный товар")
	}
	p.Status = valueobject.ListingStatusDraft
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) Approve() error {
	if p.Status != valueobject.ListingStatusPendingReview || !p.Status.CanTransitionTo(valueobject.ListingStatusActive) {
		return apperror.IllegalTransition("одобрить можно только товар на модерации")
	}
	p.Status = valueobject.ListingStatusActive
	p.RejectionReason = nil
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) Reject(reason string) error {
	if p.Status != valueobject.ListingStatusPendingReview || !p.Status.CanTransitionTo(valueobject.ListingStatusRejected) {
		return apperror.IllegalTransition("отклонить можно только товар на модерации")
	}
	p.Status = valueobject.ListingStatusRejected
	if reason = strings.TrimSpace(reason); reason != "" {
		p.RejectionReason = &reason
	} else {
		p.RejectionReason = nil
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) Archive() error {
	if !p.Status.CanTransitionTo(valueobject.ListingStatusArchived) {
		return apperror.IllegalTransition("товар уже в архиве")
	}
	p.Status = valueobject.ListingStatusArchived
	p.UpdatedAt = time.Now()
	return nil
}

// EnsureDeletable проверяет, что товар можно удалить.
func (p *Product) EnsureDeletable() error {
	if !p.Capabilities().CanDelete {
		return apperror.ErrProductPublished
	}
	return nil
}

func (p *Product) IsOwnedBy(sellerID uuid.UUID) bool {
	return p.SellerID == sellerID
}
