package dto

import (
	"time"

	"github.com/google/uuid"
)

// DevTokenRequest - выпуск токена без входа, только для локальной разработки.
type DevTokenRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Role   string     `json:"role"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
}

type MediaUploadResponse struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
