package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/marketplace-listings/internal/domain/repository"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// CredentialJournal пишет историю кодов подтверждения в listing_credentials.
// Хранится только bcrypt-хеш кода.
type CredentialJournal struct {
	db *sqlx.DB
}

func NewCredentialJournal(db *sqlx.DB) *CredentialJournal {
	return &CredentialJournal{db: db}
}

func (j *CredentialJournal) RecordIssued(ctx context.Context, rec repository.CredentialRecord) error {
	query := `
		INSERT INTO listing_credentials (id, product_id, seller_id, code_hash, issued_at, expires_at, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id, issued_at)
		DO UPDATE SET seller_id = EXCLUDED.seller_id, code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at
	`

	var sellerID *uuid.UUID
	if rec.SellerID != uuid.Nil {
		sellerID = &rec.SellerID
	}

	_, err := j.db.ExecContext(ctx, query,
		uuid.New(),
		rec.ProductID,
		sellerID,
		rec.CodeHash,
		rec.IssuedAt,
		rec.ExpiresAt,
		string(repository.CredentialIssued),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось записать выдачу кода")
	}
	return nil
}

// RecordClosed фиксирует исход выдачи. Записи пишутся асинхронно и могут
// прийти раньше RecordIssued, поэтому обе операции делают upsert.
func (j *CredentialJournal) RecordClosed(ctx context.Context, productID uuid.UUID, issuedAt time.Time, kind repository.CredentialEventKind, at time.Time) error {
	query := `
		INSERT INTO listing_credentials (id, product_id, issued_at, outcome, closed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, issued_at)
		DO UPDATE SET outcome = EXCLUDED.outcome, closed_at = EXCLUDED.closed_at
	`

	if _, err := j.db.ExecContext(ctx, query, uuid.New(), productID, issuedAt, string(kind), at); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить журнал кодов")
	}
	return nil
}
