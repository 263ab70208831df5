package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/form"
)

// ListingPatchRequest - частичное изменение полей товара. Отсутствующее поле не меняется.
type ListingPatchRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	Stock           *int     `json:"stock"`
	PrimaryCategory *string  `json:"primary_category"`
	SubCategory     *string  `json:"sub_category"`
	ImageURLs       []string `json:"image_urls"`
	AIEnabled       *bool    `json:"ai_enabled"`
}

func (r ListingPatchRequest) ToPatch() entity.ListingPatch {
	return entity.ListingPatch{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Stock:           r.Stock,
		PrimaryCategory: r.PrimaryCategory,
		SubCategory:     r.SubCategory,
		ImageURLs:       r.ImageURLs,
		AIEnabled:       r.AIEnabled,
	}
}

// FormPatchRequest - изменение полей формы и введённого кода.
type FormPatchRequest struct {
	ListingPatchRequest
	Code *string `json:"code"`
}

type RejectProductRequest struct {
	Reason string `json:"reason"`
}

type ListingFieldsDTO struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Stock           int      `json:"stock"`
	PrimaryCategory string   `json:"primary_category"`
	SubCategory     string   `json:"sub_category"`
	ImageURLs       []string `json:"image_urls"`
	AIEnabled       bool     `json:"ai_enabled"`
}

func ToListingFieldsDTO(f entity.ListingFields) ListingFieldsDTO {
	return ListingFieldsDTO{
		Name:            f.Name,
		Description:     f.Description,
		Price:           f.Price,
		Stock:           f.Stock,
		PrimaryCategory: f.PrimaryCategory,
		SubCategory:     f.SubCategory,
		ImageURLs:       f.ImageURLs,
		AIEnabled:       f.AIEnabled,
	}
}

type FormStateResponse struct {
	ID               uuid.UUID           `json:"id"`
	ProductID        uuid.UUID           `json:"product_id"`
	Fields           ListingFieldsDTO    `json:"fields"`
	EnteredCode      string              `json:"entered_code"`
	FieldErrors      map[string]string   `json:"field_errors,omitempty"`
	Subcategories    []string            `json:"subcategories"`
	Credential       *credential.Display `json:"credential,omitempty"`
	IssuanceInFlight bool                `json:"issuance_in_flight"`
	PaymentRequired  bool                `json:"payment_required"`
	CanSubmit        bool                `json:"can_submit"`
}

func ToFormStateResponse(s form.State) FormStateResponse {
	subcategories := s.Subcategories
	if subcategories == nil {
		subcategories = []string{}
	}
	return FormStateResponse{
		ID:               s.ID,
		ProductID:        s.ProductID,
		Fields:           ToListingFieldsDTO(s.Fields),
		EnteredCode:      s.EnteredCode,
		FieldErrors:      s.FieldErrors,
		Subcategories:    subcategories,
		Credential:       s.Credential,
		IssuanceInFlight: s.IssuanceInFlight,
		PaymentRequired:  s.PaymentRequired,
		CanSubmit:        s.CanSubmit,
	}
}

type ProductResponse struct {
	ID              uuid.UUID                `json:"id"`
	SellerID        uuid.UUID                `json:"seller_id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	Price           float64                  `json:"price"`
	Currency        string                   `json:"currency"`
	Stock           int                      `json:"stock"`
	PrimaryCategory string                   `json:"primary_category"`
	SubCategory     string                   `json:"sub_category"`
	ImageURLs       []string                 `json:"image_urls"`
	AIEnabled       bool                     `json:"ai_enabled"`
	Status          string                   `json:"status"`
	RejectionReason *string                  `json:"rejection_reason"`
	Actions         valueobject.Capabilities `json:"actions"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func ToProductResponse(p *entity.Product) ProductResponse {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:              p.ID,
		SellerID:        p.SellerID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.Amount,
		Currency:        p.Price.Currency,
		Stock:           p.Stock,
		PrimaryCategory: p.PrimaryCategory,
		SubCategory:     p.SubCategory,
		ImageURLs:       images,
		AIEnabled:       p.AIEnabled,
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
		Actions:         p.Capabilities(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func ToProductResponses(products []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}
