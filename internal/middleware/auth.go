package middleware

import (
	"net/http"
	"strings"

	"burnlink_backend/internal/auth"
	"burnlink_backend/internal/logger"
	"burnlink_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Ключи identity в gin-контексте. Хендлеры собирают из них явный
// CallerIdentity и передают его в сервис параметром.
const (
	ContextUserIDKey = "userID"
	ContextTierKey   = "tier"
)

// AuthMiddleware - обязательная проверка JWT
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Сохраняем claims в контекст
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextTierKey, claims.Tier)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// OptionalAuthMiddleware - identity извлекается, если токен передан и валиден;
// без токена запрос продолжается анонимно (тариф free).
// Невалидный токен отклоняется: молчаливый даунгрейд тарифа хуже ошибки.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextUserIDKey, models.AnonymousOwner)
			c.Set(ContextTierKey, string(models.TierFree))
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header invalid"})
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextTierKey, claims.Tier)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}
	return id
}

// GetTier извлекает тариф пользователя из контекста
func GetTier(c *gin.Context) string {
	tier, exists := c.Get(ContextTierKey)
	if !exists {
		return string(models.TierFree)
	}

	t, ok := tier.(string)
	if !ok || t == "" {
		return string(models.TierFree)
	}
	return t
}
