package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedplan/internal/guest"
)

func (handler *Handler) handleListGuests(ctx *gin.Context) {
	guests, err := handler.guests.List(ctx.Request.Context())
	if err != nil {
		handler.respondGuestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, guests)
}

func (handler *Handler) handleGetGuest(ctx *gin.Context) {
	found, err := handler.guests.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		handler.respondGuestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, found)
}

func (handler *Handler) handleCreateGuest(ctx *gin.Context) {
	var input guest.Input
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_input", "expected a JSON guest body"))
		return
	}
	created, err := handler.guests.Create(ctx.Request.Context(), input)
	if err != nil {
		handler.respondGuestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

func (handler *Handler) handleUpdateGuest(ctx *gin.Context) {
	var input guest.Input
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_input", "expected a JSON guest body"))
		return
	}
	updated, err := handler.guests.Update(ctx.Request.Context(), ctx.Param("id"), input)
	if err != nil {
		handler.respondGuestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

func (handler *Handler) handleDeleteGuest(ctx *gin.Context) {
	deleted, err := handler.guests.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		handler.respondGuestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deleted)
}
