package auth

import (
	"errors"

	"burnlink_backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims - полезная нагрузка JWT. Токены выпускает внешний auth-сервис,
// мы их только проверяем и извлекаем identity + тариф.
type Claims struct {
	UserID string `json:"userId"`
	Tier   string `json:"tier"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// ParseToken проверяет подпись и возвращает claims
func ParseToken(tokenStr string) (*Claims, error) {
	secret := config.GetConfig().JWT.Secret

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Tier == "" {
		claims.Tier = "free"
	}

	return claims, nil
}
