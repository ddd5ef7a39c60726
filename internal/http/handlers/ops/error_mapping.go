package ops

import (
	"errors"

	"github.com/fieldops-next/internal/http/response"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError 将服务层错误映射为统一响应
func respondServiceError(c *gin.Context, err error) {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		logger.Errorw("handler_error", "error", err)
		response.Error(c, appErr.Code, appErr.Message)
		return
	}
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrDeliveryNotFound),
		errors.Is(err, service.ErrReturnNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrMissingOrderID),
		errors.Is(err, service.ErrMissingReturnID),
		errors.Is(err, service.ErrMissingPartyID),
		errors.Is(err, service.ErrMissingRegionID),
		errors.Is(err, service.ErrMissingRefID),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidOrderItem):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrOrderNotDraft),
		errors.Is(err, service.ErrOrderStatusInvalid),
		errors.Is(err, service.ErrDeliveryFinalized),
		errors.Is(err, service.ErrOverpayment),
		errors.Is(err, service.ErrAdjustRequiresPaid),
		errors.Is(err, service.ErrReturnNotPending),
		errors.Is(err, service.ErrPostingInProgress):
		response.Conflict(c, err.Error())
	default:
		logger.Errorw("handler_error", "error", err)
		response.Error(c, response.CodeInternal, err.Error())
	}
}
