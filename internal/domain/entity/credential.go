package entity

import (
	"time"

	"github.com/google/uuid"
)

// CredentialTTL - срок жизни кода подтверждения.
const CredentialTTL = 900 * time.Second

// VerificationCredential - одноразовый шестизначный код, привязанный к товару.
type VerificationCredential struct {
	ProductID uuid.UUID
	Code      string
	IssuedAt  time.Time
	TTL       time.Duration
	Consumed  bool
}

// NewVerificationCredential создаёт свежий неиспользованный код.
func NewVerificationCredential(productID uuid.UUID, code string, issuedAt time.Time) *VerificationCredential {
	return &VerificationCredential{
		ProductID: productID,
		Code:      code,
		IssuedAt:  issuedAt,
		TTL:       CredentialTTL,
	}
}

func (c *VerificationCredential) ExpiresAt() time.Time {
	return c.IssuedAt.Add(c.TTL)
}

// IsLive: код не использован и now < issuedAt + ttl.
func (c *VerificationCredential) IsLive(now time.Time) bool {
	return !c.Consumed && now.Before(c.ExpiresAt())
}

// RemainingSeconds округляет оставшееся время вверх до секунды; 0, если код не живой.
func (c *VerificationCredential) RemainingSeconds(now time.Time) int {
	if !c.IsLive(now) {
		return 0
	}
	left := c.ExpiresAt().Sub(now)
	secs := int(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}
	return secs
}

// TTLSeconds - срок жизни в секундах.
func (c *VerificationCredential) TTLSeconds() int {
	return int(c.TTL / time.Second)
}
