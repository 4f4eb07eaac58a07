package models

// Причины неудачной попытки скачивания (для аудита)
const (
	AttemptFailPasswordRequired  = "password-required"
	AttemptFailPasswordIncorrect = "password-incorrect"
)

// DownloadAttempt - append-only запись аудита: одна строка на каждую
// попытку скачивания, удачную или нет. Не обновляется и не удаляется.
type DownloadAttempt struct {
	BaseModel
	BurnID          string `gorm:"type:uuid;index;not null" json:"burnId"`
	DownloaderIP    string `gorm:"column:downloader_ip" json:"downloaderIp"`
	DownloaderAgent string `json:"downloaderAgent"`
	DownloaderEmail string `json:"downloaderEmail,omitempty"`
	Success         bool   `gorm:"not null" json:"success"`
	ErrorReason     string `json:"errorReason,omitempty"`
}
