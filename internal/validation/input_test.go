package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProductName(t *testing.T) {
	assert.Error(t, ValidateProductName(""))
	assert.Error(t, ValidateProductName("abcd"))
	assert.NoError(t, ValidateProductName("abcde"))
	assert.NoError(t, ValidateProductName(strings.Repeat("я", 100)))
	assert.Error(t, ValidateProductName(strings.Repeat("я", 101)))
}

func TestValidateProductDescription(t *testing.T) {
	assert.Error(t, ValidateProductDescription(strings.Repeat("a", 19)))
	assert.NoError(t, ValidateProductDescription(strings.Repeat("a", 20)))
	assert.NoError(t, ValidateProductDescription(strings.Repeat("a", 500)))
	assert.Error(t, ValidateProductDescription(strings.Repeat("a", 501)))
}

func TestValidateStock(t *testing.T) {
	assert.NoError(t, ValidateStock(0))
	assert.NoError(t, ValidateStock(999))
	assert.Error(t, ValidateStock(-1))
	assert.Error(t, ValidateStock(1000))
}

func TestValidateImageSlots(t *testing.T) {
	t.Run("first slot is mandatory", func(t *testing.T) {
		errs := ValidateImageSlots([]string{"", "https://cdn.example.com/a.png"})
		assert.Contains(t, errs, 0)
		assert.NotContains(t, errs, 1)
	})

	t.Run("optional slots may be empty", func(t *testing.T) {
		errs := ValidateImageSlots([]string{"https://cdn.example.com/a.png", "", "", ""})
		assert.Empty(t, errs)
	})

	t.Run("optional slot must be well formed when present", func(t *testing.T) {
		errs := ValidateImageSlots([]string{"https://cdn.example.com/a.png", "", "not a url"})
		assert.Contains(t, errs, 2)
	})

	t.Run("too many slots", func(t *testing.T) {
		u := "https://cdn.example.com/a.png"
		errs := ValidateImageSlots([]string{u, u, u, u, u})
		assert.Contains(t, errs, MaxImageSlots)
	})

	t.Run("scheme is required", func(t *testing.T) {
		errs := ValidateImageSlots([]string{"ftp://cdn.example.com/a.png"})
		assert.Contains(t, errs, 0)
	})
}

func TestIsCredentialCodeFormat(t *testing.T) {
	assert.True(t, IsCredentialCodeFormat("012345"))
	assert.False(t, IsCredentialCodeFormat("12345"))
	assert.False(t, IsCredentialCodeFormat("12345a"))
	assert.False(t, IsCredentialCodeFormat("1234567"))
}
