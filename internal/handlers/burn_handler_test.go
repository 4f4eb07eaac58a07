package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"burnlink_backend/internal/config"
	"burnlink_backend/internal/models"
	"burnlink_backend/internal/services/dto"
	"burnlink_backend/internal/validator"
	"burnlink_backend/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// stubBurnService записывает входные параметры и отдает заготовленные ответы
type stubBurnService struct {
	lastCaller dto.CallerIdentity
	lastKey    string
	lastCreate *dto.CreateBurnRequest

	err error
}

func (s *stubBurnService) Create(ctx context.Context, caller dto.CallerIdentity, meta dto.RequestMeta, req *dto.CreateBurnRequest) (*dto.CreateBurnResponse, error) {
	s.lastCaller = caller
	s.lastCreate = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CreateBurnResponse{
		BurnID:       "11111111-1111-1111-1111-111111111111",
		ShortLink:    "aB3dE9xZ",
		UploadURL:    "https://blobs.test/upload",
		ShareURL:     "https://burn.test/d/aB3dE9xZ",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		MaxDownloads: 5,
		Tier:         caller.Tier,
	}, nil
}

func (s *stubBurnService) Inspect(ctx context.Context, key string) (*dto.BurnMetadataResponse, error) {
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BurnMetadataResponse{BurnID: key, FileName: "a.txt"}, nil
}

func (s *stubBurnService) Consume(ctx context.Context, key string, meta dto.RequestMeta, req *dto.ConsumeBurnRequest) (*dto.ConsumeBurnResponse, error) {
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ConsumeBurnResponse{DownloadURL: "https://blobs.test/download", RemainingDownloads: 4}, nil
}

func (s *stubBurnService) Delete(ctx context.Context, caller dto.CallerIdentity, key string) (*dto.DeleteBurnResponse, error) {
	s.lastCaller = caller
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DeleteBurnResponse{Success: true, BurnID: key}, nil
}

func (s *stubBurnService) List(ctx context.Context, caller dto.CallerIdentity, status string, limit int) (*dto.ListBurnsResponse, error) {
	s.lastCaller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ListBurnsResponse{Count: 0, UserID: caller.UserID, Tier: caller.Tier}, nil
}

func (s *stubBurnService) ListAttempts(ctx context.Context, caller dto.CallerIdentity, key string) (*dto.AttemptsResponse, error) {
	s.lastCaller = caller
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AttemptsResponse{Count: 0}, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *stubBurnService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = testJWTSecret
	config.AppConfig = cfg

	svc := &stubBurnService{}
	handler := NewBurnHandler(NewBaseHandler(validator.New()), svc)

	r := gin.New()
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	return r, svc
}

func signToken(t *testing.T, userID, tier string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"tier":   tier,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBurnAnonymous(t *testing.T) {
	r, svc := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/burns", "", gin.H{
		"fileName": "report.pdf",
		"fileSize": 2048,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.lastCaller.IsAnonymous())
	assert.Equal(t, models.TierFree, svc.lastCaller.Tier)
	assert.Equal(t, "report.pdf", svc.lastCreate.FileName)
}

func TestCreateBurnAuthenticated(t *testing.T) {
	r, svc := setupRouter(t)
	token := signToken(t, "user-1", "pro")

	w := doRequest(r, http.MethodPost, "/api/v1/burns", token, gin.H{
		"fileName": "a.txt",
		"fileSize": 10,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", svc.lastCaller.UserID)
	assert.Equal(t, models.TierPro, svc.lastCaller.Tier)
}

func TestCreateBurnInvalidToken(t *testing.T) {
	r, _ := setupRouter(t)

	// Невалидный токен отклоняется, а не даунгрейдится до анонима
	w := doRequest(r, http.MethodPost, "/api/v1/burns", "garbage", gin.H{
		"fileName": "a.txt",
		"fileSize": 10,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBurnValidationFailure(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/burns", "", gin.H{
		"fileName":      "a.txt",
		"fileSize":      10,
		"uploaderEmail": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBurn(t *testing.T) {
	r, svc := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/burns/aB3dE9xZ", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aB3dE9xZ", svc.lastKey)
}

func TestGetBurnGone(t *testing.T) {
	r, svc := setupRouter(t)
	svc.err = apperrors.ErrGone("expired")

	w := doRequest(r, http.MethodGet, "/api/v1/burns/aB3dE9xZ", "", nil)
	assert.Equal(t, http.StatusGone, w.Code)

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "GONE", body.Error.Code)
	assert.Equal(t, "expired", body.Error.Details["reason"])
}

func TestDownloadBurnWithoutBody(t *testing.T) {
	r, _ := setupRouter(t)

	// Тело запроса опционально
	req := httptest.NewRequest(http.MethodPost, "/api/v1/burns/aB3dE9xZ/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListBurnsRequiresAuth(t *testing.T) {
	r, svc := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/burns", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/burns?status=active", signToken(t, "user-1", "free"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", svc.lastCaller.UserID)
}

func TestDeleteBurn(t *testing.T) {
	r, svc := setupRouter(t)

	w := doRequest(r, http.MethodDelete, "/api/v1/burns/some-id", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/v1/burns/some-id", signToken(t, "user-1", "free"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "some-id", svc.lastKey)
	assert.Equal(t, "user-1", svc.lastCaller.UserID)
}
