package quota

import (
	"fmt"

	"burnlink_backend/internal/models"
	"burnlink_backend/pkg/apperrors"
)

// Потолки тарифа free
const (
	FreeMaxFileSize  = 100 * 1024 * 1024 // 100MB
	FreeMaxExpiresIn = 24 * 60 * 60      // 24 часа
	FreeMaxDownloads = 5
)

// Потолки тарифа pro
const (
	ProMaxFileSize  = 10 * 1024 * 1024 * 1024 // 10GB
	ProMaxExpiresIn = 30 * 24 * 60 * 60       // 30 дней
)

// Evaluate проверяет запрошенные параметры против потолков тарифа.
// Чистая функция без I/O: вердикт детерминирован по входам.
// Возвращает nil либо apperrors.ErrQuotaExceeded с конкретным
// нарушенным потолком.
func Evaluate(tier models.Tier, fileSizeBytes int64, expiresInSeconds int, maxDownloads int) error {
	switch tier {
	case models.TierFree:
		if fileSizeBytes > FreeMaxFileSize {
			return apperrors.ErrQuotaExceeded(fmt.Sprintf("File size exceeds free tier limit of %dMB", FreeMaxFileSize/1024/1024))
		}
		if expiresInSeconds > FreeMaxExpiresIn {
			return apperrors.ErrQuotaExceeded(fmt.Sprintf("Expiration time exceeds free tier limit of %d hours", FreeMaxExpiresIn/3600))
		}
		if maxDownloads == models.UnlimitedDownloads {
			return apperrors.ErrQuotaExceeded("Unlimited downloads are available on the pro tier only")
		}
		if maxDownloads > FreeMaxDownloads {
			return apperrors.ErrQuotaExceeded(fmt.Sprintf("Max downloads exceeds free tier limit of %d", FreeMaxDownloads))
		}
	case models.TierPro:
		if fileSizeBytes > ProMaxFileSize {
			return apperrors.ErrQuotaExceeded(fmt.Sprintf("File size exceeds pro tier limit of %dGB", ProMaxFileSize/1024/1024/1024))
		}
		if expiresInSeconds > ProMaxExpiresIn {
			return apperrors.ErrQuotaExceeded(fmt.Sprintf("Expiration time exceeds pro tier limit of %d days", ProMaxExpiresIn/86400))
		}
	default:
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown tier: %s", tier))
	}

	if fileSizeBytes <= 0 {
		return apperrors.NewBadRequestError("fileSize must be positive")
	}
	if expiresInSeconds <= 0 {
		return apperrors.NewBadRequestError("expiresIn must be positive")
	}
	if maxDownloads != models.UnlimitedDownloads && maxDownloads <= 0 {
		return apperrors.NewBadRequestError("maxDownloads must be positive or -1 for unlimited")
	}

	return nil
}
