package entity

import (
	"strings"

	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// ListingDraft - состояние формы до отправки: поля карточки и введённый код.
type ListingDraft struct {
	ListingFields
	EnteredCode string
}

// SelectPrimaryCategory выбирает основную категорию. Если категория меняется,
// выбранная подкатегория сбрасывается.
func (d *ListingDraft) SelectPrimaryCategory(primary string) {
	primary = strings.TrimSpace(primary)
	if primary == d.PrimaryCategory {
		return
	}
	d.PrimaryCategory = primary
	d.SubCategory = ""
}

// Apply накладывает патч на черновик с теми же правилами, что и для товара.
func (d *ListingDraft) Apply(p ListingPatch) {
	d.ListingFields = p.ApplyTo(d.ListingFields)
}

// Validate проверяет поля черновика. Код здесь не проверяется:
// его сверяет только эмитент при отправке.
func (d ListingDraft) Validate(categories CategoryChecker) apperror.FieldErrors {
	return d.ListingFields.Normalize().Validate(categories)
}

// Reset очищает форму.
func (d *ListingDraft) Reset() {
	*d = ListingDraft{}
}
