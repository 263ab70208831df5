package valueobject

// Capabilities - набор изменяющих операций, разрешённых в текущем статусе.
type Capabilities struct {
	CanEdit            bool `json:"can_edit"`
	CanDelete          bool `json:"can_delete"`
	CanSubmitForReview bool `json:"can_submit_for_review"`
	CanUnpublish       bool `json:"can_unpublish"`
}

// CapabilitiesFor - единственный источник правил доступа к изменению товара.
// Его используют и сущность при переходах, и дашборд при построении действий.
func CapabilitiesFor(status ListingStatus) Capabilities {
	mutable := status != ListingStatusActive
	return Capabilities{
		CanEdit:            mutable,
		CanDelete:          mutable,
		CanSubmitForReview: status == ListingStatusDraft || status == ListingStatusRejected,
		CanUnpublish:       status == ListingStatusActive,
	}
}

// Capabilities - сокращение для CapabilitiesFor(s).
func (s ListingStatus) Capabilities() Capabilities {
	return CapabilitiesFor(s)
}
