package repositories

import (
	"context"

	"burnlink_backend/internal/models"

	"gorm.io/gorm"
)

// DownloadAttemptRepository - append-only журнал попыток скачивания.
// Записи не обновляются и не удаляются.
type DownloadAttemptRepository interface {
	Append(ctx context.Context, attempt *models.DownloadAttempt) error
	ListByBurn(ctx context.Context, burnID string, limit int) ([]models.DownloadAttempt, error)
}

type downloadAttemptRepository struct {
	db *gorm.DB
}

func NewDownloadAttemptRepository(db *gorm.DB) DownloadAttemptRepository {
	return &downloadAttemptRepository{db: db}
}

func (r *downloadAttemptRepository) Append(ctx context.Context, attempt *models.DownloadAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *downloadAttemptRepository) ListByBurn(ctx context.Context, burnID string, limit int) ([]models.DownloadAttempt, error) {
	var attempts []models.DownloadAttempt
	err := r.db.WithContext(ctx).
		Where("burn_id = ?", burnID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
