package dto

import (
	"time"

	"burnlink_backend/internal/models"
)

// ============================================
// IDENTITY
// ============================================

// CallerIdentity - явная identity вызывающего. Передается в каждый
// вызов сервиса параметром, никогда не читается из глобального состояния.
type CallerIdentity struct {
	UserID string
	Tier   models.Tier
}

// Anonymous - identity неаутентифицированного вызывающего (тариф free)
func Anonymous() CallerIdentity {
	return CallerIdentity{UserID: models.AnonymousOwner, Tier: models.TierFree}
}

func (c CallerIdentity) IsAnonymous() bool {
	return c.UserID == "" || c.UserID == models.AnonymousOwner
}

// RequestMeta - сетевые реквизиты запроса для аудита
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ============================================
// REQUEST STRUCTURES
// ============================================

// CreateBurnRequest - запрос на создание burn-записи
type CreateBurnRequest struct {
	FileName      string `json:"fileName" validate:"required"`
	FileSize      int64  `json:"fileSize" validate:"required,gt=0"`
	ContentType   string `json:"contentType"`
	ExpiresIn     int    `json:"expiresIn"`    // секунды; по умолчанию 24 часа
	MaxDownloads  int    `json:"maxDownloads"` // -1 = безлимит (только pro)
	Password      string `json:"password"`
	UploaderEmail string `json:"uploaderEmail" validate:"omitempty,email"`
	CustomMessage string `json:"customMessage" validate:"omitempty,max=500"`
	Watermark     bool   `json:"watermark"`

	// nil = по умолчанию true
	DownloadNotifications *bool `json:"downloadNotifications"`
}

// ConsumeBurnRequest - запрос на скачивание
type ConsumeBurnRequest struct {
	Password string `json:"password"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// ============================================
// RESPONSE STRUCTURES
// ============================================

// CreateBurnResponse - результат создания
type CreateBurnResponse struct {
	BurnID       string      `json:"burnId"`
	ShortLink    string      `json:"shortLink"`
	UploadURL    string      `json:"uploadUrl"`
	ShareURL     string      `json:"shareUrl"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	MaxDownloads interface{} `json:"maxDownloads"` // число или "unlimited"
	Tier         models.Tier `json:"tier"`
}

// BurnMetadataResponse - метаданные записи (без хеша пароля)
type BurnMetadataResponse struct {
	BurnID           string      `json:"burnId"`
	ShortLink        string      `json:"shortLink"`
	FileName         string      `json:"fileName"`
	FileSize         int64       `json:"fileSize"`
	UploadedAt       time.Time   `json:"uploadedAt"`
	ExpiresAt        time.Time   `json:"expiresAt"`
	CurrentDownloads int         `json:"currentDownloads"`
	MaxDownloads     interface{} `json:"maxDownloads"`
	RequiresPassword bool        `json:"requiresPassword"`
	CustomMessage    string      `json:"customMessage,omitempty"`
	Tier             models.Tier `json:"tier"`
	Watermark        bool        `json:"watermark"`
}

// ConsumeBurnResponse - результат успешного скачивания
type ConsumeBurnResponse struct {
	DownloadURL        string      `json:"downloadUrl"`
	FileName           string      `json:"fileName"`
	FileSize           int64       `json:"fileSize"`
	ExpiresIn          int         `json:"expiresIn"` // срок жизни download URL, секунды
	RemainingDownloads interface{} `json:"remainingDownloads"`
	WillBeDeleted      bool        `json:"willBeDeleted"`
	Message            string      `json:"message,omitempty"`
}

// DeleteBurnResponse - результат ручного удаления
type DeleteBurnResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	BurnID  string `json:"burnId"`
}

// BurnListItem - элемент списка записей владельца
type BurnListItem struct {
	BurnID           string            `json:"burnId"`
	ShortLink        string            `json:"shortLink"`
	FileName         string            `json:"fileName"`
	FileSize         int64             `json:"fileSize"`
	UploadedAt       time.Time         `json:"uploadedAt"`
	ExpiresAt        time.Time         `json:"expiresAt"`
	CurrentDownloads int               `json:"currentDownloads"`
	MaxDownloads     interface{}       `json:"maxDownloads"`
	RequiresPassword bool              `json:"requiresPassword"`
	CustomMessage    string            `json:"customMessage,omitempty"`
	IsDeleted        bool              `json:"isDeleted"`
	DeleteReason     string            `json:"deleteReason,omitempty"`
	Tier             models.Tier       `json:"tier"`
	ShareURL         string            `json:"shareUrl"`
	Status           models.BurnStatus `json:"status"`
}

// ListBurnsResponse - список записей владельца
type ListBurnsResponse struct {
	Burns  []BurnListItem `json:"burns"`
	Count  int            `json:"count"`
	UserID string         `json:"userId"`
	Tier   models.Tier    `json:"tier"`
}

// AttemptsResponse - журнал попыток скачивания для владельца
type AttemptsResponse struct {
	Attempts []models.DownloadAttempt `json:"attempts"`
	Count    int                      `json:"count"`
}

// RenderDownloads переводит сентинел безлимита в строку "unlimited",
// как это делал публичный API исходного сервиса
func RenderDownloads(n int) interface{} {
	if n == models.UnlimitedDownloads {
		return "unlimited"
	}
	return n
}
