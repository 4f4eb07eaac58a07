package shortlink

import (
	"context"
	"crypto/rand"
	"math/big"

	"burnlink_backend/pkg/apperrors"

	"github.com/google/uuid"
)

const (
	charset    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength = 8

	// Ограниченное число попыток при коллизии. При 62^8 кодов исчерпание
	// практически недостижимо, но обрабатывается явно, а не игнорируется.
	maxAttempts = 5
)

// ExistsFunc проверяет занятость короткого кода в хранилище записей
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// NewID возвращает глобально уникальный идентификатор записи
func NewID() string {
	return uuid.NewString()
}

// NewShortCode генерирует 8-символьный alphanumeric код и проверяет его
// на коллизию через exists. После maxAttempts коллизий подряд возвращает
// apperrors.ErrShortCodeExhausted.
func NewShortCode(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", apperrors.InternalError(err)
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperrors.ErrShortCodeExhausted
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(charset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = charset[n.Int64()]
	}
	return string(buf), nil
}
