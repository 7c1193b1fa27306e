package handler

import (
	"errors"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/auth"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/logger"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/dto"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles token refresh and logout for portal-issued tokens
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	sessionTTL time.Duration
}

// NewAuthHandler creates a new auth handler. sessionTTL bounds how long an
// all-devices logout is remembered and should match the refresh token lifetime.
func NewAuthHandler(jwtService *auth.JWTService, blacklist auth.TokenBlacklist, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
	}
}

// RefreshToken godoc
// @ID           refreshAuthToken
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new access and refresh token pair. The old refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.tokenError(c, err)
		return
	}
	if h.revoked(c, claims) {
		h.ErrorWithCode(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
		return
	}

	pair, err := h.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	if h.blacklist != nil && claims.ID != "" {
		ttl := claims.RemainingTTL(h.jwtService.Clock().Now())
		if err := h.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
			logger.L(ctx).Error("Failed to revoke used refresh token", zap.String("jti", claims.ID), zap.Error(err))
		}
	}

	h.Success(c, TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	})
}

// Logout godoc
// @ID           logoutAuth
// @Summary      Logout
// @Description  Revoke the bearer access token, and optionally its refresh token or every session of the player
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body LogoutRequest false "Logout options"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, ok := middleware.BearerToken(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	claims, err := h.jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	if h.blacklist == nil {
		h.SuccessWithMessage(c, nil, "Logged out")
		return
	}

	ctx := c.Request.Context()
	now := h.jwtService.Clock().Now()

	if req.AllDevices {
		if err := h.blacklist.AddUserTokensToBlacklist(ctx, claims.UserID, h.sessionTTL); err != nil {
			h.HandleError(c, err)
			return
		}
	} else if claims.ID != "" {
		if err := h.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL(now)); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	if req.RefreshToken != "" {
		if refresh, err := h.jwtService.ValidateRefreshToken(req.RefreshToken); err == nil &&
			refresh.UserID == claims.UserID && refresh.ID != "" {
			if err := h.blacklist.AddToBlacklist(ctx, refresh.ID, refresh.RemainingTTL(now)); err != nil {
				logger.L(ctx).Warn("Failed to revoke refresh token on logout", zap.Error(err))
			}
		}
	}

	logger.L(ctx).Info("Player logged out",
		zap.Int64("user_id", claims.UserID),
		zap.Bool("all_devices", req.AllDevices),
	)
	h.SuccessWithMessage(c, nil, "Logged out")
}

// revoked checks the blacklist for claims. Lookups fail open.
func (h *AuthHandler) revoked(c *gin.Context, claims *auth.Claims) bool {
	if h.blacklist == nil {
		return false
	}
	ctx := c.Request.Context()
	if claims.ID != "" {
		blacklisted, err := h.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			logger.L(ctx).Error("Failed to check token blacklist", zap.Error(err))
		} else if blacklisted {
			return true
		}
	}
	invalidated, err := h.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		logger.L(ctx).Error("Failed to check user token invalidation", zap.Error(err))
		return false
	}
	return invalidated
}

func (h *AuthHandler) tokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		h.ErrorWithCode(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		h.ErrorWithCode(c, dto.ErrCodeTokenExpired, "Session has expired, please sign in again")
	default:
		h.ErrorWithCode(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}
