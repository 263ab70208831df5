package credential

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeGenerator выдаёт шестизначный цифровой код.
type CodeGenerator func() (string, error)

var codeSpace = big.NewInt(1000000)

// RandomCode - равномерно распределённый код 000000–999999 из crypto/rand.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("credential: не удалось сгенерировать код: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
