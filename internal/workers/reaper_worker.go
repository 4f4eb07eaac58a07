package workers

import (
	"context"
	"time"

	"burnlink_backend/internal/logger"
	"burnlink_backend/internal/models"
	"burnlink_backend/internal/repositories"
	"burnlink_backend/internal/storage"
)

// Сколько истекших записей обрабатываем за один проход
const reaperBatchSize = 100

// ReaperWorker - фоновая зачистка истекших записей. Истечение само по себе
// пассивно (вычисляется на чтении), поэтому без реапера блоб никогда не
// скачанного истекшего файла остался бы в хранилище навсегда.
type ReaperWorker struct {
	burnRepo repositories.BurnRepository
	blobs    storage.BlobStorage
	interval time.Duration
}

func NewReaperWorker(burnRepo repositories.BurnRepository, blobs storage.BlobStorage, interval time.Duration) *ReaperWorker {
	return &ReaperWorker{
		burnRepo: burnRepo,
		blobs:    blobs,
		interval: interval,
	}
}

// Start запускает периодическую зачистку до отмены контекста
func (w *ReaperWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ReaperWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reaper worker stopped")
			return
		case <-ticker.C:
			if n, err := w.ReapOnce(ctx); err != nil {
				logger.WorkerLog("reaper", "reap expired burns", err)
			} else if n > 0 {
				logger.Info("Reaped expired burns", "count", n)
			}
		}
	}
}

// ReapOnce обрабатывает одну пачку истекших записей: блоб удаляется,
// запись ретируется с причиной "expired". Видимость ретирования важнее
// чистоты хранилища: неудачное удаление блоба логируется, но ретирование
// не блокирует.
func (w *ReaperWorker) ReapOnce(ctx context.Context) (int, error) {
	expired, err := w.burnRepo.ListExpired(ctx, time.Now(), reaperBatchSize)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for i := range expired {
		burn := &expired[i]

		if err := w.blobs.Delete(ctx, burn.StorageKey); err != nil {
			logger.Error("reaper failed to delete blob",
				"burn_id", burn.ID, "storage_key", burn.StorageKey, "error", err.Error())
		}

		if err := w.burnRepo.Retire(ctx, burn.ID, models.RetireReasonExpired); err != nil {
			logger.Error("reaper failed to retire burn", "burn_id", burn.ID, "error", err.Error())
			continue
		}
		reaped++
	}

	return reaped, nil
}
