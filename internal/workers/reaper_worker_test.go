package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"burnlink_backend/internal/models"
	"burnlink_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBurnRepo struct {
	mu    sync.Mutex
	burns map[string]*models.Burn
}

func newStubBurnRepo(burns ...*models.Burn) *stubBurnRepo {
	r := &stubBurnRepo{burns: make(map[string]*models.Burn)}
	for _, b := range burns {
		r.burns[b.ID] = b
	}
	return r
}

func (r *stubBurnRepo) Create(ctx context.Context, burn *models.Burn) error { return nil }

func (r *stubBurnRepo) FindByKey(ctx context.Context, key string) (*models.Burn, error) {
	return nil, repositories.ErrBurnNotFound
}

func (r *stubBurnRepo) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *stubBurnRepo) IncrementDownloadIfAllowed(ctx context.Context, id string, now time.Time) (int, error) {
	return 0, repositories.ErrIncrementRejected
}

func (r *stubBurnRepo) Retire(ctx context.Context, id string, reason models.RetireReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.burns[id]
	if !ok || b.IsRetired {
		return nil
	}
	b.IsRetired = true
	b.RetireReason = &reason
	return nil
}

func (r *stubBurnRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Burn, error) {
	return nil, nil
}

func (r *stubBurnRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Burn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Burn
	for _, b := range r.burns {
		if !b.IsRetired && b.IsExpired(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type stubBlobStorage struct {
	mu      sync.Mutex
	deleted []string
	failOn  map[string]bool
}

func (s *stubBlobStorage) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "", nil
}

func (s *stubBlobStorage) PresignDownload(ctx context.Context, key, fileName string, expiry time.Duration) (string, error) {
	return "", nil
}

func (s *stubBlobStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[key] {
		return errors.New("access denied")
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubBlobStorage) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func testBurn(expiresAt time.Time) *models.Burn {
	id := uuid.NewString()
	return &models.Burn{
		BaseModel:    models.BaseModel{ID: id},
		ShortCode:    id[:8],
		FileName:     "a.txt",
		StorageKey:   "burns/" + id,
		ExpiresAt:    expiresAt,
		MaxDownloads: 5,
	}
}

func TestReapOnce(t *testing.T) {
	now := time.Now()
	expired := testBurn(now.Add(-time.Hour))
	alive := testBurn(now.Add(time.Hour))

	repo := newStubBurnRepo(expired, alive)
	blobs := &stubBlobStorage{}
	worker := NewReaperWorker(repo, blobs, time.Minute)

	n, err := worker.ReapOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// истекшая запись ретирована с причиной expired, блоб удален
	assert.True(t, repo.burns[expired.ID].IsRetired)
	assert.Equal(t, models.RetireReasonExpired, *repo.burns[expired.ID].RetireReason)
	assert.Equal(t, []string{expired.StorageKey}, blobs.deleted)

	// живая запись не тронута
	assert.False(t, repo.burns[alive.ID].IsRetired)

	// повторный проход ничего не находит
	n, err = worker.ReapOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReapOnceRetiresDespiteBlobFailure(t *testing.T) {
	expired := testBurn(time.Now().Add(-time.Hour))

	repo := newStubBurnRepo(expired)
	blobs := &stubBlobStorage{failOn: map[string]bool{expired.StorageKey: true}}
	worker := NewReaperWorker(repo, blobs, time.Minute)

	// видимость ретирования важнее чистоты хранилища
	n, err := worker.ReapOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, repo.burns[expired.ID].IsRetired)
}
