package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialEventKind - что произошло с кодом подтверждения.
type CredentialEventKind string

const (
	CredentialIssued     CredentialEventKind = "issued"
	CredentialConsumed   CredentialEventKind = "consumed"
	CredentialExpired    CredentialEventKind = "expired"
	CredentialSuperseded CredentialEventKind = "superseded"
	CredentialReleased   CredentialEventKind = "released"
)

// CredentialRecord - запись журнала кодов. Сам код в журнал не попадает.
type CredentialRecord struct {
	ProductID uuid.UUID
	SellerID  uuid.UUID
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CredentialJournal хранит историю выдачи и погашения кодов.
// Журнал не участвует в проверке кода.
type CredentialJournal interface {
	RecordIssued(ctx context.Context, rec CredentialRecord) error
	RecordClosed(ctx context.Context, productID uuid.UUID, issuedAt time.Time, kind CredentialEventKind, at time.Time) error
}
