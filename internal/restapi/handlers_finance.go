package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wedplan/internal/finance"
)

func (handler *Handler) handleListFinances(ctx *gin.Context) {
	views, err := handler.finances.List(ctx.Request.Context())
	if err != nil {
		handler.respondFinanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, views)
}

func (handler *Handler) handleGetFinance(ctx *gin.Context) {
	view, err := handler.finances.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		handler.respondFinanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (handler *Handler) handleCreateFinance(ctx *gin.Context) {
	var input finance.Input
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_input", "expected a JSON finance body"))
		return
	}
	created, err := handler.finances.Create(ctx.Request.Context(), input)
	if err != nil {
		handler.respondFinanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

func (handler *Handler) handleUpdateFinance(ctx *gin.Context) {
	var input finance.Input
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_input", "expected a JSON finance body"))
		return
	}
	updated, err := handler.finances.Update(ctx.Request.Context(), ctx.Param("id"), input)
	if err != nil {
		handler.respondFinanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

func (handler *Handler) handleDeleteFinance(ctx *gin.Context) {
	deleted, err := handler.finances.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		handler.respondFinanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deleted)
}

// handleFinanceTotals aggregates every record. A corrupt aggregate is a
// client-visible 400 so the dashboard surfaces the inconsistency instead of
// rendering a negative balance.
func (handler *Handler) handleFinanceTotals(ctx *gin.Context) {
	totals, err := handler.finances.TotalAmounts(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, finance.ErrCorruptRecord) {
			ctx.JSON(http.StatusBadRequest, errorResponse("data_integrity", "finance totals failed integrity check"))
			return
		}
		handler.respondFinanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, totals)
}
