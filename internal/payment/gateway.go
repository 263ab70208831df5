package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/marketplace-listings/internal/logger"
)

// Acknowledger - подтверждение оплаты размещения. Единственное условие
// перед выдачей кода подтверждения.
type Acknowledger interface {
	Acknowledge(ctx context.Context, sellerID, productID uuid.UUID) error
}

// MockGateway имитирует платёжный шлюз: ждёт delay и всегда подтверждает оплату.
// Реальной проверки платежа не выполняется.
type MockGateway struct {
	delay time.Duration
}

func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{delay: delay}
}

// Acknowledge возвращает ошибку контекста, если запрос отменён до ответа шлюза.
func (g *MockGateway) Acknowledge(ctx context.Context, sellerID, productID uuid.UUID) error {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	logger.L().WithFields(logrus.Fields{
		"seller_id":  sellerID,
		"product_id": productID,
	}).Info("payment: оплата размещения подтверждена (mock)")
	return nil
}
