package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDCtxKey = "user_id"

// HandleAuthMiddleware accepts a bearer token from the Authorization
// header, or from the access token cookie when the header is absent.
// The token subject must be the user of the current session.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	accessToken, ok := h.extractAccessToken(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ParseAccessToken(accessToken)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, ok := h.sessions.Current()
	if !ok || user.ID != claims.Subject {
		h.logger.Warn().
			Str("subject", claims.Subject).
			Msg(errSessionMismatch.Error())
		abort(c, newUnauthorizedError(errSessionMismatch.Error()))
		return
	}

	c.Set(userIDCtxKey, user.ID)
	c.Next()
}

func (h *handlerImpl) extractAccessToken(c *gin.Context) (string, bool) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		token, err := c.Cookie(accessTokenCookie)
		if err != nil || token == "" {
			h.logger.Error().Msg("authorization header required")
			return "", false
		}
		return token, true
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
		h.logger.Error().Msg("invalid authorization header")
		return "", false
	}
	return parts[1], true
}
