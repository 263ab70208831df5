package entity

import (
	"fmt"
	"strings"

	"github.com/ignatzorin/marketplace-listings/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-listings/internal/validation"
)

// Имена полей в ошибках валидации.
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldPrice           = "price"
	FieldStock           = "stock"
	FieldPrimaryCategory = "primary_category"
	FieldSubCategory     = "sub_category"
	FieldImageURLs       = "image_urls"
	FieldCode            = "code"
)

// CategoryChecker - то, что нужно от реестра категорий для валидации.
type CategoryChecker interface {
	HasPrimary(primary string) bool
	HasSubcategory(primary, sub string) bool
}

// ListingFields - содержательные поля карточки товара.
type ListingFields struct {
	Name            string
	Description     string
	Price           float64
	Stock           int
	PrimaryCategory string
	SubCategory     string
	ImageURLs       []string
	AIEnabled       bool
}

// Normalize обрезает пробелы и приводит слоты изображений к фиксированной длине.
func (f ListingFields) Normalize() ListingFields {
	out := f
	out.Name = strings.TrimSpace(f.Name)
	out.Description = strings.TrimSpace(f.Description)
	out.PrimaryCategory = strings.TrimSpace(f.PrimaryCategory)
	out.SubCategory = strings.TrimSpace(f.SubCategory)

	n := len(f.ImageURLs)
	if n < validation.MaxImageSlots {
		n = validation.MaxImageSlots
	}
	out.ImageURLs = make([]string, n)
	for i, u := range f.ImageURLs {
		out.ImageURLs[i] = strings.TrimSpace(u)
	}
	return out
}

// Validate проверяет все поля и возвращает ошибки по каждому полю.
// Пустой результат означает, что поля корректны.
func (f ListingFields) Validate(categories CategoryChecker) apperror.FieldErrors {
	errs := apperror.FieldErrors{}

	if err := validation.ValidateProductName(f.Name); err != nil {
		errs[FieldName] = err.Error()
	}
	if err := validation.ValidateProductDescription(f.Description); err != nil {
		errs[FieldDescription] = err.Error()
	}
	if err := valueobject.ValidatePrice(f.Price); err != nil {
		errs[FieldPrice] = err.Error()
	}
	if err := validation.ValidateStock(f.Stock); err != nil {
		errs[FieldStock] = err.Error()
	}

	primaryOK := false
	if err := validation.ValidateNonEmpty("категория", f.PrimaryCategory); err != nil {
		errs[FieldPrimaryCategory] = err.Error()
	} else if !categories.HasPrimary(f.PrimaryCategory) {
		errs[FieldPrimaryCategory] = "неизвестная категория"
	} else {
		primaryOK = true
	}

	if err := validation.ValidateNonEmpty("подкатегория", f.SubCategory); err != nil {
		errs[FieldSubCategory] = err.Error()
	} else if primaryOK && !categories.HasSubcategory(f.PrimaryCategory, f.SubCategory) {
		errs[FieldSubCategory] = "подкатегория не относится к выбранной категории"
	} else if !primaryOK {
		errs[FieldSubCategory] = "сначала выберите категорию"
	}

	for slot, err := range validation.ValidateImageSlots(f.ImageURLs) {
		errs[fmt.Sprintf("%s[%d]", FieldImageURLs, slot)] = err.Error()
	}

	return errs
}

// FilledImageURLs возвращает непустые ссылки в порядке слотов.
func (f ListingFields) FilledImageURLs() []string {
	out := make([]string, 0, len(f.ImageURLs))
	for _, u := range f.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// ListingPatch - частичное изменение полей. nil означает «не менять».
type ListingPatch struct {
	Name            *string
	Description     *string
	Price           *float64
	Stock           *int
	PrimaryCategory *string
	SubCategory     *string
	ImageURLs       []string
	AIEnabled       *bool
}

// IsEmpty сообщает, что патч не содержит ни одного поля.
func (p ListingPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Stock == nil &&
		p.PrimaryCategory == nil && p.SubCategory == nil && p.ImageURLs == nil && p.AIEnabled == nil
}

// ApplyTo накладывает патч на поля. Смена основной категории без явной
// подкатегории сбрасывает подкатегорию.
func (p ListingPatch) ApplyTo(f ListingFields) ListingFields {
	out := f
	out.ImageURLs = append([]string(nil), f.ImageURLs...)

	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Stock != nil {
		out.Stock = *p.Stock
	}
	if p.PrimaryCategory != nil && strings.TrimSpace(*p.PrimaryCategory) != f.PrimaryCategory {
		out.PrimaryCategory = *p.PrimaryCategory
		out.SubCategory = ""
	}
	if p.SubCategory != nil {
		out.SubCategory = *p.SubCategory
	}
	if p.ImageURLs != nil {
		out.ImageURLs = append([]string(nil), p.ImageURLs...)
	}
	if p.AIEnabled != nil {
		out.AIEnabled = *p.AIEnabled
	}
	return out
}
