package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wedplan/internal/auth0"
)

// handleIdentityProviderToken passes through the upstream IdP access token
// recorded on the Auth0 user. The wording of the not-found message matches
// what the frontend already checks for.
func (handler *Handler) handleIdentityProviderToken(ctx *gin.Context) {
	if handler.idp == nil {
		ctx.JSON(http.StatusServiceUnavailable, errorResponse("auth0_disabled", "identity provider lookup is not configured"))
		return
	}
	token, err := handler.idp.IdentityProviderToken(ctx.Request.Context(), ctx.Param("userId"))
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"accessToken": token})
	case errors.Is(err, auth0.ErrNoIdentityToken), errors.Is(err, auth0.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, errorResponse("not_found", "No IdP access token found"))
	default:
		handler.logger.Error("idp token lookup failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, errorResponse("auth0_error", "identity provider lookup failed"))
	}
}
