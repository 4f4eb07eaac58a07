package models

type Tier string
type RetireReason string
type BurnStatus string

// UnlimitedDownloads - сентинел "без лимита скачиваний" (только pro)
const UnlimitedDownloads = -1

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"

	// Причина выставляется ровно один раз, в момент перехода is_retired -> true.
	// Первая причина выигрывает и больше не меняется.
	RetireReasonExpired      RetireReason = "expired"
	RetireReasonMaxDownloads RetireReason = "max-downloads"
	RetireReasonManual       RetireReason = "manual"

	// Отображаемый статус записи. Не хранится: чистая проекция
	// из is_retired / retire_reason / expires_at / счетчиков на момент чтения.
	BurnStatusActive       BurnStatus = "active"
	BurnStatusExpired      BurnStatus = "expired"
	BurnStatusMaxDownloads BurnStatus = "max-downloads"
	BurnStatusDeleted      BurnStatus = "deleted"
)

// AnonymousOwner - значение owner_id для неаутентифицированных загрузок
const AnonymousOwner = "anonymous"
