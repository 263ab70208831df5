package valueobject

import (
	"fmt"
	"math"

	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

const (
	DefaultCurrency = "RUB"

	MinPrice = 100.0
	MaxPrice = 10000000.0
)

type Money struct {
	Amount   float64
	Currency string
}

func NewMoney(amount float64, currency string) (Money, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, apperror.New(apperror.ErrCodeValidation, "сумма должна быть неотрицательным числом")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// NewPrice создаёт цену товара в допустимом диапазоне.
func NewPrice(amount float64) (Money, error) {
	if err := ValidatePrice(amount); err != nil {
		return Money{}, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	return NewMoney(amount, DefaultCurrency)
}

// ValidatePrice проверяет границы цены без создания значения.
func ValidatePrice(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("цена должна быть числом")
	}
	if amount < MinPrice {
		return fmt.Errorf("цена должна быть не меньше %.0f", MinPrice)
	}
	if amount > MaxPrice {
		return fmt.Errorf("цена должна быть не больше %.0f", MaxPrice)
	}
	return nil
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}
