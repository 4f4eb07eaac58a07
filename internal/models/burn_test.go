package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeBurn(expiresAt time.Time, maxDownloads, currentDownloads int) *Burn {
	return &Burn{
		ExpiresAt:        expiresAt,
		MaxDownloads:     maxDownloads,
		CurrentDownloads: currentDownloads,
	}
}

func retiredBurn(reason RetireReason) *Burn {
	b := activeBurn(time.Now().Add(time.Hour), 5, 0)
	b.IsRetired = true
	b.RetireReason = &reason
	return b
}

func TestRequiresPassword(t *testing.T) {
	b := &Burn{}
	assert.False(t, b.RequiresPassword())

	empty := ""
	b.PasswordHash = &empty
	assert.False(t, b.RequiresPassword())

	hash := "$2a$10$abc"
	b.PasswordHash = &hash
	assert.True(t, b.RequiresPassword())
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	b := activeBurn(now.Add(time.Hour), 5, 0)

	assert.False(t, b.IsExpired(now))
	// дедлайн включительно: expires_at == now уже истек
	assert.True(t, b.IsExpired(b.ExpiresAt))
	assert.True(t, b.IsExpired(now.Add(2*time.Hour)))
}

func TestAtDownloadCeiling(t *testing.T) {
	assert.False(t, activeBurn(time.Now(), 5, 4).AtDownloadCeiling())
	assert.True(t, activeBurn(time.Now(), 5, 5).AtDownloadCeiling())
	assert.True(t, activeBurn(time.Now(), 1, 1).AtDownloadCeiling())

	// безлимит потолка не имеет
	assert.False(t, activeBurn(time.Now(), UnlimitedDownloads, 1000000).AtDownloadCeiling())
}

func TestGoneReason(t *testing.T) {
	now := time.Now()

	// активная запись доступна
	_, gone := activeBurn(now.Add(time.Hour), 5, 0).GoneReason(now)
	assert.False(t, gone)

	// ретированная отдает зафиксированную причину, даже если дедлайн не прошел
	reason, gone := retiredBurn(RetireReasonManual).GoneReason(now)
	require.True(t, gone)
	assert.Equal(t, RetireReasonManual, reason)

	// истекшая, но не ретированная, неотличима от ретированной
	reason, gone = activeBurn(now.Add(-time.Minute), 5, 0).GoneReason(now)
	require.True(t, gone)
	assert.Equal(t, RetireReasonExpired, reason)

	// выбравшая лимит до ретирования
	reason, gone = activeBurn(now.Add(time.Hour), 3, 3).GoneReason(now)
	require.True(t, gone)
	assert.Equal(t, RetireReasonMaxDownloads, reason)

	// ретирование фиксирует причину: для уже ретированной записи
	// истекший дедлайн причину не переписывает
	expired := retiredBurn(RetireReasonMaxDownloads)
	expired.ExpiresAt = now.Add(-time.Hour)
	reason, gone = expired.GoneReason(now)
	require.True(t, gone)
	assert.Equal(t, RetireReasonMaxDownloads, reason)
}

func TestStatus(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		burn *Burn
		want BurnStatus
	}{
		{"active", activeBurn(now.Add(time.Hour), 5, 2), BurnStatusActive},
		{"expired lazily", activeBurn(now.Add(-time.Minute), 5, 0), BurnStatusExpired},
		{"at ceiling before retire", activeBurn(now.Add(time.Hour), 2, 2), BurnStatusMaxDownloads},
		{"retired manual", retiredBurn(RetireReasonManual), BurnStatusDeleted},
		{"retired expired", retiredBurn(RetireReasonExpired), BurnStatusExpired},
		{"retired max downloads", retiredBurn(RetireReasonMaxDownloads), BurnStatusMaxDownloads},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.burn.Status(now))
		})
	}
}

func TestRemainingDownloads(t *testing.T) {
	assert.Equal(t, 3, activeBurn(time.Now(), 5, 2).RemainingDownloads())
	assert.Equal(t, 0, activeBurn(time.Now(), 5, 5).RemainingDownloads())
	// счетчик за потолком не уводит остаток в минус
	assert.Equal(t, 0, activeBurn(time.Now(), 5, 7).RemainingDownloads())
	assert.Equal(t, UnlimitedDownloads, activeBurn(time.Now(), UnlimitedDownloads, 100).RemainingDownloads())
}
