package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"burnlink_backend/internal/auth"
	"burnlink_backend/internal/config"
	"burnlink_backend/internal/email"
	"burnlink_backend/internal/logger"
	"burnlink_backend/internal/models"
	"burnlink_backend/internal/quota"
	"burnlink_backend/internal/repositories"
	"burnlink_backend/internal/services/dto"
	"burnlink_backend/internal/shortlink"
	"burnlink_backend/internal/storage"
	"burnlink_backend/pkg/apperrors"
)

// ============================================
// BURN LIFECYCLE SERVICE
// ============================================

// Значения по умолчанию при создании (как в публичном API исходного сервиса)
const (
	defaultExpiresIn    = 86400 // 24 часа
	defaultMaxDownloads = 5
	defaultContentType  = "application/octet-stream"

	// Сколько раз пересоздаем id+код при конфликте уникальности
	createAttempts = 3

	listDefaultLimit = 50
	listMaxLimit     = 100
)

type BurnService interface {
	// Create валидирует запрос, проверяет квоты тарифа и создает запись
	// в состоянии Active. Возвращает presigned upload URL: байты файла
	// клиент заливает в блоб-хранилище напрямую, сервис их не видит.
	Create(ctx context.Context, caller dto.CallerIdentity, meta dto.RequestMeta, req *dto.CreateBurnRequest) (*dto.CreateBurnResponse, error)

	// Inspect возвращает метаданные записи по id или короткому коду
	Inspect(ctx context.Context, key string) (*dto.BurnMetadataResponse, error)

	// Consume - скачивание: проверка пароля, атомарный инкремент счетчика,
	// presigned download URL, аудит, терминальное ретирование
	Consume(ctx context.Context, key string, meta dto.RequestMeta, req *dto.ConsumeBurnRequest) (*dto.ConsumeBurnResponse, error)

	// Delete - ручное ретирование, только владельцем
	Delete(ctx context.Context, caller dto.CallerIdentity, key string) (*dto.DeleteBurnResponse, error)

	// List - записи владельца с производным статусом
	List(ctx context.Context, caller dto.CallerIdentity, status string, limit int) (*dto.ListBurnsResponse, error)

	// ListAttempts - журнал попыток скачивания, только владельцу
	ListAttempts(ctx context.Context, caller dto.CallerIdentity, key string) (*dto.AttemptsResponse, error)
}

type burnService struct {
	burnRepo    repositories.BurnRepository
	attemptRepo repositories.DownloadAttemptRepository
	blobs       storage.BlobStorage
	notifier    email.Notifier
	cfg         *config.Config
}

func NewBurnService(
	burnRepo repositories.BurnRepository,
	attemptRepo repositories.DownloadAttemptRepository,
	blobs storage.BlobStorage,
	notifier email.Notifier,
	cfg *config.Config,
) BurnService {
	return &burnService{
		burnRepo:    burnRepo,
		attemptRepo: attemptRepo,
		blobs:       blobs,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// ============================================
// CREATE
// ============================================

func (s *burnService) Create(ctx context.Context, caller dto.CallerIdentity, meta dto.RequestMeta, req *dto.CreateBurnRequest) (*dto.CreateBurnResponse, error) {
	if req.FileName == "" || req.FileSize <= 0 {
		return nil, apperrors.NewBadRequestError("fileName and fileSize are required")
	}

	if req.ContentType == "" {
		req.ContentType = defaultContentType
	}
	if req.ExpiresIn == 0 {
		req.ExpiresIn = defaultExpiresIn
	}
	if req.MaxDownloads == 0 {
		req.MaxDownloads = defaultMaxDownloads
	}

	tier := caller.Tier
	if tier == "" {
		tier = models.TierFree
	}

	if err := quota.Evaluate(tier, req.FileSize, req.ExpiresIn, req.MaxDownloads); err != nil {
		return nil, err
	}

	var passwordHash *string
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		passwordHash = &hash
	}

	notifications := true
	if req.DownloadNotifications != nil {
		notifications = *req.DownloadNotifications
	}

	ownerID := caller.UserID
	if ownerID == "" {
		ownerID = models.AnonymousOwner
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(req.ExpiresIn) * time.Second)

	// Шифрование на стороне хранилища доступно pro-тарифу
	metadata, _ := json.Marshal(map[string]interface{}{
		"contentType": req.ContentType,
		"isEncrypted": tier == models.TierPro,
	})

	var burn *models.Burn

	// Конфликт уникальности id/кода пересоздаем ограниченное число раз
	for attempt := 0; ; attempt++ {
		id := shortlink.NewID()
		code, err := shortlink.NewShortCode(ctx, s.burnRepo.ShortCodeExists)
		if err != nil {
			return nil, err
		}

		burn = &models.Burn{
			BaseModel:             models.BaseModel{ID: id, CreatedAt: now},
			ShortCode:             code,
			FileName:              req.FileName,
			FileSizeBytes:         req.FileSize,
			ContentType:           req.ContentType,
			StorageKey:            fmt.Sprintf("burns/%s", id),
			ExpiresAt:             expiresAt,
			MaxDownloads:          req.MaxDownloads,
			CurrentDownloads:      0,
			PasswordHash:          passwordHash,
			Tier:                  tier,
			OwnerID:               ownerID,
			UploaderIP:            meta.IP,
			UploaderEmail:         req.UploaderEmail,
			CustomMessage:         req.CustomMessage,
			DownloadNotifications: notifications,
			Watermark:             tier == models.TierPro && req.Watermark,
			Metadata:              metadata,
		}

		err = s.burnRepo.Create(ctx, burn)
		if err == nil {
			break
		}
		if apperrors.Is(err, repositories.ErrDuplicateKey) && attempt < createAttempts-1 {
			logger.CtxWarn(ctx, "burn id/short code collision, regenerating", "attempt", attempt+1)
			continue
		}
		if apperrors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperrors.ErrConflict(err, "Failed to allocate unique burn identifiers")
		}
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	uploadURL, err := s.blobs.PresignUpload(ctx, burn.StorageKey, burn.ContentType, s.handleTTL())
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	logger.CtxInfo(ctx, "burn created",
		"burn_id", burn.ID, "short_code", burn.ShortCode,
		"tier", string(tier), "expires_at", expiresAt)

	return &dto.CreateBurnResponse{
		BurnID:       burn.ID,
		ShortLink:    burn.ShortCode,
		UploadURL:    uploadURL,
		ShareURL:     s.shareURL(burn.ShortCode),
		ExpiresAt:    expiresAt,
		MaxDownloads: dto.RenderDownloads(burn.MaxDownloads),
		Tier:         tier,
	}, nil
}

// ============================================
// INSPECT
// ============================================

func (s *burnService) Inspect(ctx context.Context, key string) (*dto.BurnMetadataResponse, error) {
	burn, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	// Ленивое истечение: состояние не мутируем, но читателю истекшая
	// запись неотличима от ретированной
	if reason, gone := burn.GoneReason(time.Now()); gone {
		return nil, apperrors.ErrGone(string(reason))
	}

	return &dto.BurnMetadataResponse{
		BurnID:           burn.ID,
		ShortLink:        burn.ShortCode,
		FileName:         burn.FileName,
		FileSize:         burn.FileSizeBytes,
		UploadedAt:       burn.CreatedAt,
		ExpiresAt:        burn.ExpiresAt,
		CurrentDownloads: burn.CurrentDownloads,
		MaxDownloads:     dto.RenderDownloads(burn.MaxDownloads),
		RequiresPassword: burn.RequiresPassword(),
		CustomMessage:    burn.CustomMessage,
		Tier:             burn.Tier,
		Watermark:        burn.Watermark,
	}, nil
}

// ============================================
// CONSUME
// ============================================

func (s *burnService) Consume(ctx context.Context, key string, meta dto.RequestMeta, req *dto.ConsumeBurnRequest) (*dto.ConsumeBurnResponse, error) {
	burn, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if reason, gone := burn.GoneReason(time.Now()); gone {
		return nil, apperrors.ErrGone(string(reason))
	}

	// Проверка пароля до любой мутации счетчика
	if burn.RequiresPassword() {
		if req.Password == "" {
			s.audit(ctx, burn.ID, meta, req.Email, false, models.AttemptFailPasswordRequired)
			return nil, apperrors.ErrPasswordRequired
		}
		if !auth.CheckPasswordHash(req.Password, *burn.PasswordHash) {
			s.audit(ctx, burn.ID, meta, req.Email, false, models.AttemptFailPasswordIncorrect)
			return nil, apperrors.ErrPasswordIncorrect
		}
	}

	// Единственная точка синхронизации конкурентных скачиваний.
	// Отказ означает, что гонку выиграл другой потребитель.
	newCount, err := s.burnRepo.IncrementDownloadIfAllowed(ctx, burn.ID, time.Now())
	if err != nil {
		if apperrors.Is(err, repositories.ErrIncrementRejected) {
			return nil, apperrors.ErrGone(string(models.RetireReasonMaxDownloads))
		}
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	// Инкремент уже состоялся и не должен потеряться: выдачу URL ретраим,
	// повтор presign идемпотентен и счетчик не трогает
	var downloadURL string
	err = withRetry(ctx, func() error {
		var presignErr error
		downloadURL, presignErr = s.blobs.PresignDownload(ctx, burn.StorageKey, burn.FileName, s.handleTTL())
		return presignErr
	})
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	s.audit(ctx, burn.ID, meta, req.Email, true, "")

	isFinal := burn.MaxDownloads != models.UnlimitedDownloads && newCount >= burn.MaxDownloads

	if isFinal {
		// Терминальное скачивание: уничтожаем блоб и ретируем запись в той же
		// логической операции. Видимость ретирования важнее чистоты хранилища:
		// неудачное удаление блоба логируется, но ретирование не блокирует.
		if err := s.blobs.Delete(ctx, burn.StorageKey); err != nil {
			logger.CtxWithError(ctx, "failed to delete blob on final download", err,
				"burn_id", burn.ID, "storage_key", burn.StorageKey)
		}
		if err := s.burnRepo.Retire(ctx, burn.ID, models.RetireReasonMaxDownloads); err != nil {
			return nil, apperrors.ErrStoreUnavailable(err)
		}
		logger.CtxInfo(ctx, "burn retired after final download", "burn_id", burn.ID)
	}

	remaining := models.UnlimitedDownloads
	if burn.MaxDownloads != models.UnlimitedDownloads {
		remaining = burn.MaxDownloads - newCount
		if remaining < 0 {
			remaining = 0
		}
	}

	s.notifyDownload(ctx, burn, remaining, isFinal)

	resp := &dto.ConsumeBurnResponse{
		DownloadURL:        downloadURL,
		FileName:           burn.FileName,
		FileSize:           burn.FileSizeBytes,
		ExpiresIn:          s.cfg.Burn.HandleTTLSeconds,
		RemainingDownloads: dto.RenderDownloads(remaining),
		WillBeDeleted:      isFinal,
	}
	if isFinal {
		resp.Message = "This was the final download. File has been deleted."
	}
	return resp, nil
}

// ============================================
// DELETE
// ============================================

func (s *burnService) Delete(ctx context.Context, caller dto.CallerIdentity, key string) (*dto.DeleteBurnResponse, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NewUnauthorizedError("Authentication required")
	}

	burn, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if burn.OwnerID != caller.UserID {
		return nil, apperrors.ErrNotOwner
	}

	if burn.IsRetired {
		reason := models.RetireReasonManual
		if burn.RetireReason != nil {
			reason = *burn.RetireReason
		}
		return nil, apperrors.ErrGone(string(reason))
	}

	// Отсутствие блоба не ошибка: уничтожение терпимо к частичным
	// предыдущим сбоям
	if err := s.blobs.Delete(ctx, burn.StorageKey); err != nil {
		logger.CtxWithError(ctx, "failed to delete blob on manual delete", err,
			"burn_id", burn.ID, "storage_key", burn.StorageKey)
	}

	if err := s.burnRepo.Retire(ctx, burn.ID, models.RetireReasonManual); err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	logger.CtxInfo(ctx, "burn manually deleted", "burn_id", burn.ID, "owner_id", caller.UserID)

	return &dto.DeleteBurnResponse{
		Success: true,
		Message: "Burn deleted successfully",
		BurnID:  burn.ID,
	}, nil
}

// ============================================
// LIST
// ============================================

func (s *burnService) List(ctx context.Context, caller dto.CallerIdentity, status string, limit int) (*dto.ListBurnsResponse, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NewUnauthorizedError("Authentication required")
	}

	if limit <= 0 {
		limit = listDefaultLimit
	}
	if limit > listMaxLimit {
		limit = listMaxLimit
	}

	burns, err := s.burnRepo.ListByOwner(ctx, caller.UserID, limit)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	now := time.Now()
	items := make([]dto.BurnListItem, 0, len(burns))
	for i := range burns {
		b := &burns[i]

		// Статус - проекция на момент чтения, не хранимое состояние
		burnStatus := b.Status(now)
		if status != "" && status != "all" && string(burnStatus) != status {
			continue
		}

		deleteReason := ""
		if b.RetireReason != nil {
			deleteReason = string(*b.RetireReason)
		}

		items = append(items, dto.BurnListItem{
			BurnID:           b.ID,
			ShortLink:        b.ShortCode,
			FileName:         b.FileName,
			FileSize:         b.FileSizeBytes,
			UploadedAt:       b.CreatedAt,
			ExpiresAt:        b.ExpiresAt,
			CurrentDownloads: b.CurrentDownloads,
			MaxDownloads:     dto.RenderDownloads(b.MaxDownloads),
			RequiresPassword: b.RequiresPassword(),
			CustomMessage:    b.CustomMessage,
			IsDeleted:        b.IsRetired,
			DeleteReason:     deleteReason,
			Tier:             b.Tier,
			ShareURL:         s.shareURL(b.ShortCode),
			Status:           burnStatus,
		})
	}

	return &dto.ListBurnsResponse{
		Burns:  items,
		Count:  len(items),
		UserID: caller.UserID,
		Tier:   caller.Tier,
	}, nil
}

// ============================================
// AUDIT
// ============================================

func (s *burnService) ListAttempts(ctx context.Context, caller dto.CallerIdentity, key string) (*dto.AttemptsResponse, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NewUnauthorizedError("Authentication required")
	}

	burn, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if burn.OwnerID != caller.UserID {
		return nil, apperrors.ErrNotOwner
	}

	attempts, err := s.attemptRepo.ListByBurn(ctx, burn.ID, listMaxLimit)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	return &dto.AttemptsResponse{
		Attempts: attempts,
		Count:    len(attempts),
	}, nil
}

// ============================================
// HELPERS
// ============================================

func (s *burnService) resolve(ctx context.Context, key string) (*models.Burn, error) {
	if key == "" {
		return nil, apperrors.NewBadRequestError("burn key is required")
	}

	burn, err := s.burnRepo.FindByKey(ctx, key)
	if err != nil {
		if apperrors.Is(err, repositories.ErrBurnNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.ErrStoreUnavailable(err)
	}
	return burn, nil
}

// audit пишет строку журнала попыток. Сбой аудита не валит операцию.
func (s *burnService) audit(ctx context.Context, burnID string, meta dto.RequestMeta, downloaderEmail string, success bool, reason string) {
	attempt := &models.DownloadAttempt{
		BaseModel:       models.BaseModel{ID: shortlink.NewID()},
		BurnID:          burnID,
		DownloaderIP:    meta.IP,
		DownloaderAgent: meta.UserAgent,
		DownloaderEmail: downloaderEmail,
		Success:         success,
		ErrorReason:     reason,
	}
	if err := s.attemptRepo.Append(ctx, attempt); err != nil {
		logger.CtxWithError(ctx, "failed to append download attempt", err, "burn_id", burnID)
	}
}

// notifyDownload шлет владельцу best-effort уведомление о скачивании
func (s *burnService) notifyDownload(ctx context.Context, burn *models.Burn, remaining int, wasFinal bool) {
	if !burn.DownloadNotifications || burn.UploaderEmail == "" {
		return
	}

	go func() {
		if err := s.notifier.NotifyDownload(burn.UploaderEmail, burn.FileName, remaining, wasFinal); err != nil {
			logger.Error("failed to send download notification",
				"burn_id", burn.ID, "error", err.Error())
		}
	}()
}

func (s *burnService) shareURL(code string) string {
	return fmt.Sprintf("%s/d/%s", s.cfg.Burn.ShareBaseURL, code)
}

func (s *burnService) handleTTL() time.Duration {
	return time.Duration(s.cfg.Burn.HandleTTLSeconds) * time.Second
}
