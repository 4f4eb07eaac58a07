package handlers

import (
	"burnlink_backend/internal/logger"
	"burnlink_backend/internal/middleware"
	"burnlink_backend/internal/models"
	"burnlink_backend/internal/services/dto"
	"burnlink_backend/internal/validator"
	"burnlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// BindAndValidateJSON парсит JSON-тело и прогоняет его через validator.
// При ошибке сам пишет ответ и возвращает false.
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
			return false
		}
		apperrors.HandleError(c, apperrors.InternalError(err))
		return false
	}

	return true
}

// GetCaller собирает явный CallerIdentity из claims, которые middleware
// положил в gin-контекст. Сервис никогда не лезет в контекст сам.
func (h *BaseHandler) GetCaller(c *gin.Context) dto.CallerIdentity {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return dto.Anonymous()
	}
	return dto.CallerIdentity{
		UserID: userID,
		Tier:   models.Tier(middleware.GetTier(c)),
	}
}

// GetRequestMeta - сетевые реквизиты запроса для аудита
func (h *BaseHandler) GetRequestMeta(c *gin.Context) dto.RequestMeta {
	return dto.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// HandleServiceError отдает ошибку сервиса клиенту
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
}
