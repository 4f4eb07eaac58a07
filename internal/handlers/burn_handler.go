package handlers

import (
	"net/http"
	"strconv"

	"burnlink_backend/internal/middleware"
	"burnlink_backend/internal/services"
	"burnlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ============================================
// BURN HANDLER
// ============================================

type BurnHandler struct {
	*BaseHandler
	burnService services.BurnService
}

func NewBurnHandler(base *BaseHandler, burnService services.BurnService) *BurnHandler {
	return &BurnHandler{
		BaseHandler: base,
		burnService: burnService,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *BurnHandler) RegisterRoutes(r *gin.RouterGroup) {
	burns := r.Group("/burns")
	{
		// Создание доступно анонимно (тариф free)
		burns.POST("", middleware.OptionalAuthMiddleware(), h.CreateBurn)

		// Публичный доступ по id или короткому коду
		burns.GET("/:key", h.GetBurn)
		burns.POST("/:key/download", h.DownloadBurn)

		// Только для владельца
		burns.GET("", middleware.AuthMiddleware(), h.ListBurns)
		burns.DELETE("/:key", middleware.AuthMiddleware(), h.DeleteBurn)
		burns.GET("/:key/attempts", middleware.AuthMiddleware(), h.ListAttempts)
	}
}

// ============================================
// HANDLERS
// ============================================

// CreateBurn - создание burn-записи, возвращает presigned upload URL
func (h *BurnHandler) CreateBurn(c *gin.Context) {
	var req dto.CreateBurnRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.burnService.Create(c.Request.Context(), h.GetCaller(c), h.GetRequestMeta(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetBurn - метаданные записи перед скачиванием
func (h *BurnHandler) GetBurn(c *gin.Context) {
	response, err := h.burnService.Inspect(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DownloadBurn - проверка пароля и выдача presigned download URL
func (h *BurnHandler) DownloadBurn(c *gin.Context) {
	var req dto.ConsumeBurnRequest
	// Тело опционально: без пароля и email оно может отсутствовать
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidateJSON(c, &req) {
			return
		}
	}

	response, err := h.burnService.Consume(c.Request.Context(), c.Param("key"), h.GetRequestMeta(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteBurn - ручное удаление записи владельцем
func (h *BurnHandler) DeleteBurn(c *gin.Context) {
	response, err := h.burnService.Delete(c.Request.Context(), h.GetCaller(c), c.Param("key"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListBurns - список записей владельца с производным статусом
func (h *BurnHandler) ListBurns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status := c.DefaultQuery("status", "all")

	response, err := h.burnService.List(c.Request.Context(), h.GetCaller(c), status, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListAttempts - журнал попыток скачивания для владельца
func (h *BurnHandler) ListAttempts(c *gin.Context) {
	response, err := h.burnService.ListAttempts(c.Request.Context(), h.GetCaller(c), c.Param("key"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
