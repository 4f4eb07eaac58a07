package database

import (
	"burnlink_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate выполняет AutoMigrate всех моделей приложения.
// Уникальный индекс short_code создается из gorm-тегов модели и дает
// O(1) разрешение короткой ссылки без скана таблицы.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Burn{},
		&models.DownloadAttempt{},
	)
}
