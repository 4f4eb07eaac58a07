package models

import (
	"time"

	"gorm.io/datatypes"
)

// Burn - запись об одном самоуничтожающемся файле.
//
// Запись никогда не удаляется из БД физически: ретирование - мягкий,
// одноразовый переход (is_retired = true + причина), после которого
// скачивание невозможно, а блоб в объектном хранилище удален.
type Burn struct {
	BaseModel
	ShortCode     string `gorm:"uniqueIndex;size:16;not null" json:"shortLink"`
	FileName      string `gorm:"not null" json:"fileName"`
	FileSizeBytes int64  `gorm:"not null" json:"fileSize"`
	ContentType   string `gorm:"default:'application/octet-stream'" json:"contentType"`
	StorageKey    string `gorm:"not null" json:"-"`

	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`

	// UnlimitedDownloads (-1) означает "без лимита" и доступен только pro
	MaxDownloads     int `gorm:"not null" json:"-"`
	CurrentDownloads int `gorm:"not null;default:0" json:"currentDownloads"`

	// nil = пароль не требуется
	PasswordHash *string `gorm:"column:password_hash" json:"-"`

	Tier    Tier   `gorm:"size:16;not null;default:'free'" json:"tier"`
	OwnerID string `gorm:"index;not null;default:'anonymous'" json:"-"`

	UploaderIP            string         `gorm:"column:uploader_ip" json:"-"`
	UploaderEmail         string         `json:"-"`
	CustomMessage         string         `json:"customMessage,omitempty"`
	DownloadNotifications bool           `gorm:"default:true" json:"-"`
	Watermark             bool           `gorm:"default:false" json:"watermark"`
	Metadata              datatypes.JSON `gorm:"type:jsonb" json:"-"`

	// Одноразовая защелка: после true запись навсегда read-only
	IsRetired    bool          `gorm:"not null;default:false;index" json:"-"`
	RetireReason *RetireReason `gorm:"size:32" json:"-"`
}

// RequiresPassword сообщает, защищено ли скачивание паролем
func (b *Burn) RequiresPassword() bool {
	return b.PasswordHash != nil && *b.PasswordHash != ""
}

// IsExpired проверяет дедлайн по переданным часам.
// Истечение - пассивное условие: оно вычисляется на чтении,
// а не материализуется заранее в is_retired.
func (b *Burn) IsExpired(now time.Time) bool {
	return !b.ExpiresAt.After(now)
}

// AtDownloadCeiling - достигнут ли потолок успешных скачиваний
func (b *Burn) AtDownloadCeiling() bool {
	return b.MaxDownloads != UnlimitedDownloads && b.CurrentDownloads >= b.MaxDownloads
}

// GoneReason возвращает причину недоступности записи на момент now.
// Ретированная запись отдает зафиксированную причину; не ретированная,
// но истекшая или выбравшая лимит, ведет себя неотличимо от ретированной.
func (b *Burn) GoneReason(now time.Time) (RetireReason, bool) {
	if b.IsRetired {
		if b.RetireReason != nil {
			return *b.RetireReason, true
		}
		return RetireReasonManual, true
	}
	if b.IsExpired(now) {
		return RetireReasonExpired, true
	}
	if b.AtDownloadCeiling() {
		return RetireReasonMaxDownloads, true
	}
	return "", false
}

// Status - отображаемый статус для списков владельца, чистая проекция
func (b *Burn) Status(now time.Time) BurnStatus {
	if b.IsRetired {
		if b.RetireReason != nil && *b.RetireReason == RetireReasonMaxDownloads {
			return BurnStatusMaxDownloads
		}
		if b.RetireReason != nil && *b.RetireReason == RetireReasonExpired {
			return BurnStatusExpired
		}
		return BurnStatusDeleted
	}
	if b.IsExpired(now) {
		return BurnStatusExpired
	}
	if b.AtDownloadCeiling() {
		return BurnStatusMaxDownloads
	}
	return BurnStatusActive
}

// RemainingDownloads - сколько скачиваний осталось; для безлимита вернет
// UnlimitedDownloads
func (b *Burn) RemainingDownloads() int {
	if b.MaxDownloads == UnlimitedDownloads {
		return UnlimitedDownloads
	}
	remaining := b.MaxDownloads - b.CurrentDownloads
	if remaining < 0 {
		return 0
	}
	return remaining
}
