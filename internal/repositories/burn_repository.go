package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"burnlink_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBurnNotFound = errors.New("burn not found")
	ErrDuplicateKey = errors.New("burn id or short code already exists")

	// ErrIncrementRejected - условный инкремент не прошел: запись ретирована,
	// истекла или уже на потолке скачиваний
	ErrIncrementRejected = errors.New("download increment rejected")
)

type BurnRepository interface {
	// Create сохраняет новую запись; дубликат id или short_code -> ErrDuplicateKey
	Create(ctx context.Context, burn *models.Burn) error

	// FindByKey ищет запись по id (uuid) или по короткому коду
	FindByKey(ctx context.Context, key string) (*models.Burn, error)

	// ShortCodeExists - проверка занятости кода для генератора
	ShortCodeExists(ctx context.Context, code string) (bool, error)

	// IncrementDownloadIfAllowed атомарно инкрементирует счетчик скачиваний
	// одним условным UPDATE и возвращает новое значение счетчика.
	// При отказе условия возвращает ErrIncrementRejected.
	IncrementDownloadIfAllowed(ctx context.Context, id string, now time.Time) (int, error)

	// Retire - одноразовый переход в is_retired = true. Идемпотентен:
	// повторный вызов - no-op, первая причина выигрывает.
	Retire(ctx context.Context, id string, reason models.RetireReason) error

	// ListByOwner возвращает записи владельца, новые первыми
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Burn, error)

	// ListExpired возвращает не ретированные записи с истекшим дедлайном
	// (для фонового реапера)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Burn, error)
}

type burnRepository struct {
	db *gorm.DB
}

func NewBurnRepository(db *gorm.DB) BurnRepository {
	return &burnRepository{db: db}
}

func (r *burnRepository) Create(ctx context.Context, burn *models.Burn) error {
	err := r.db.WithContext(ctx).Create(burn).Error
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *burnRepository) FindByKey(ctx context.Context, key string) (*models.Burn, error) {
	var burn models.Burn

	// id - это uuid; все остальное может быть только коротким кодом.
	// Обе ветки ходят по индексу, никакого скана таблицы.
	query := r.db.WithContext(ctx)
	if _, err := uuid.Parse(key); err == nil {
		query = query.Where("id = ?", key)
	} else {
		query = query.Where("short_code = ?", key)
	}

	if err := query.First(&burn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBurnNotFound
		}
		return nil, err
	}
	return &burn, nil
}

func (r *burnRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Burn{}).
		Where("short_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *burnRepository) IncrementDownloadIfAllowed(ctx context.Context, id string, now time.Time) (int, error) {
	// Единственная точка синхронизации между конкурентными скачиваниями:
	// compare-and-increment одним условным UPDATE. Два конкурента не могут
	// оба пройти условие и протолкнуть счетчик за потолок.
	var newCount int
	result := r.db.WithContext(ctx).Raw(`
		UPDATE burns
		SET current_downloads = current_downloads + 1, updated_at = NOW()
		WHERE id = ?
		  AND is_retired = false
		  AND expires_at > ?
		  AND (max_downloads = -1 OR current_downloads < max_downloads)
		RETURNING current_downloads
	`, id, now).Scan(&newCount)

	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrIncrementRejected
	}
	return newCount, nil
}

func (r *burnRepository) Retire(ctx context.Context, id string, reason models.RetireReason) error {
	// Условие is_retired = false делает переход одноразовым: повторный
	// вызов (с любой причиной) затрагивает 0 строк и не является ошибкой.
	return r.db.WithContext(ctx).Model(&models.Burn{}).
		Where("id = ? AND is_retired = false", id).
		Updates(map[string]interface{}{
			"is_retired":    true,
			"retire_reason": reason,
		}).Error
}

func (r *burnRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Burn, error) {
	var burns []models.Burn
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&burns).Error
	return burns, err
}

func (r *burnRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Burn, error) {
	var burns []models.Burn
	err := r.db.WithContext(ctx).
		Where("is_retired = false AND expires_at <= ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&burns).Error
	return burns, err
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Драйвер postgres не всегда транслирует unique violation
	return strings.Contains(err.Error(), "duplicate key")
}
