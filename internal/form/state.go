package form

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/credential"
	"github.com/ignatzorin/marketplace-listings/internal/domain/entity"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// State - снимок формы для отображения.
type State struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Fields           entity.ListingFields
	EnteredCode      string
	FieldErrors      apperror.FieldErrors
	Subcategories    []string
	Credential       *credential.Display
	IssuanceInFlight bool
	PaymentRequired  bool
	CanSubmit        bool
}

// State собирает снимок формы.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields := f.draft.ListingFields.Normalize()
	s := State{
		ID:               f.id,
		ProductID:        f.productID,
		Fields:           fields,
		EnteredCode:      f.draft.EnteredCode,
		FieldErrors:      f.draft.Validate(f.deps.Categories),
		IssuanceInFlight: f.issuing,
		CanSubmit:        f.canSubmitLocked(),
	}
	if fields.PrimaryCategory != "" {
		s.Subcategories = f.deps.Categories.Subcategories(fields.PrimaryCategory)
	}
	if display, ok := f.deps.Issuer.Display(f.productID); ok && f.credentialActive {
		s.Credential = &display
	}
	s.PaymentRequired = s.Credential == nil
	return s
}
