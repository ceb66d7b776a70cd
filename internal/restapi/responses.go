package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wedplan/internal/finance"
	"wedplan/internal/guest"
)

func errorResponse(code string, message string) gin.H {
	return gin.H{"error": code, "message": message}
}

// respondGuestError translates guest domain errors into HTTP statuses.
// Storage faults get a generic envelope so driver details stay server-side.
func (handler *Handler) respondGuestError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, guest.ErrNotFound):
		ctx.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, guest.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_input", err.Error()))
	default:
		handler.logger.Error("guest storage failure", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("storage_error", "guest storage operation failed"))
	}
}

func (handler *Handler) respondFinanceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, finance.ErrNotFound):
		ctx.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, finance.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_input", err.Error()))
	case errors.Is(err, finance.ErrCorruptRecord):
		handler.logger.Error("finance data integrity failure", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("data_integrity", "finance record failed integrity check"))
	default:
		handler.logger.Error("finance storage failure", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse("storage_error", "finance storage operation failed"))
	}
}
