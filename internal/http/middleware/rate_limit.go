package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

// RateLimitMiddleware ограничивает количество запросов с одного IP.
// По умолчанию: 10 запросов в минуту.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	return rateLimit("ip", limit, period, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// SellerRateLimitMiddleware ограничивает запросы одного продавца (после AuthMiddleware),
// без авторизации ключом служит IP.
func SellerRateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	return rateLimit("seller", limit, period, func(c *gin.Context) string {
		if id, ok := c.Get(ContextUserIDKey); ok {
			if sellerID, ok := id.(uuid.UUID); ok {
				return sellerID.String()
			}
		}
		return c.ClientIP()
	})
}

func rateLimit(prefix string, limit int64, period time.Duration, key func(*gin.Context) string) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "limiter_" + prefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}), limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c, key(c))
		if err != nil {
			logger.L().WithError(err).Error("rate limit: ошибка хранилища")
			response.Abort(c, http.StatusInternalServerError, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))

		if lctx.Reached {
			response.Abort(c, http.StatusTooManyRequests, apperror.ErrCodeRateLimited, "слишком много запросов, попробуйте позже")
			return
		}

		c.Next()
	}
}
