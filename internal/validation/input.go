package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Константы валидации карточки товара
const (
	MinProductNameLength        = 5
	MaxProductNameLength        = 100
	MinProductDescriptionLength = 20
	MaxProductDescriptionLength = 500
	MinStock                    = 0
	MaxStock                    = 999
	MaxImageSlots               = 4
	MaxImageURLLength           = 2048
	CredentialCodeLength        = 6
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должно быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должно быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateProductName проверяет название товара.
func ValidateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("название обязательно")
	}
	return ValidateLength("название", name, MinProductNameLength, MaxProductNameLength)
}

// ValidateProductDescription проверяет описание товара.
func ValidateProductDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("описание обязательно")
	}
	return ValidateLength("описание", description, MinProductDescriptionLength, MaxProductDescriptionLength)
}

// ValidateStock проверяет остаток на складе.
func ValidateStock(stock int) error {
	if stock < MinStock || stock > MaxStock {
		return fmt.Errorf("остаток должен быть целым числом от %d до %d", MinStock, MaxStock)
	}
	return nil
}

// ValidateImageURL проверяет ссылку на изображение.
func ValidateImageURL(link string) error {
	link = strings.TrimSpace(link)
	if err := ValidateLength("ссылка на изображение", link, 0, MaxImageURLLength); err != nil {
		return err
	}

	parsedURL, err := url.ParseRequestURI(link)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// ValidateImageSlots проверяет слоты изображений: первый обязателен,
// остальные могут быть пустыми. Ключ результата - индекс слота.
func ValidateImageSlots(urls []string) map[int]error {
	errs := make(map[int]error)
	if len(urls) > MaxImageSlots {
		errs[MaxImageSlots] = fmt.Errorf("не более %d изображений", MaxImageSlots)
	}

	first := ""
	if len(urls) > 0 {
		first = strings.TrimSpace(urls[0])
	}
	if first == "" {
		errs[0] = fmt.Errorf("основное изображение обязательно")
	} else if err := ValidateImageURL(first); err != nil {
		errs[0] = err
	}

	for i := 1; i < len(urls) && i < MaxImageSlots; i++ {
		if strings.TrimSpace(urls[i]) == "" {
			continue
		}
		if err := ValidateImageURL(urls[i]); err != nil {
			errs[i] = err
		}
	}
	return errs
}

// IsCredentialCodeFormat проверяет, что строка похожа на код подтверждения (6 цифр).
func IsCredentialCodeFormat(code string) bool {
	if len(code) != CredentialCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
