package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const accessTokenCookie = "access_token"

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=255"`
}

type registerRequest struct {
	loginRequest
	Name   string `json:"name" form:"name" binding:"required,max=255"`
	Avatar string `json:"avatar" form:"avatar" binding:"omitempty,url,max=2048"`
}

type authResponse struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	h.logger.Info().
		Str("email", req.Email).
		Msg("register request")

	user, err := h.sessions.Register(c, services.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abort(c, newServiceError(err))
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.sessions.Login(c, services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		abort(c, newServiceError(err))
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	err := h.sessions.Logout(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to logout")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	clearCookie(c, accessTokenCookie)
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleMe(c *gin.Context) {
	user, ok := h.sessions.Current()
	if !ok {
		h.logger.Error().Msg("no current user")
		abort(c, newUnauthorizedError(services.ErrUnauthenticated.Error()))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlerImpl) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, expiresAt, err := h.tokens.IssueAccessToken(user.ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to issue access token")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	setAccessTokenCookie(c, token, expiresAt.Sub(h.now()))
	c.JSON(status, authResponse{
		User:        *user,
		AccessToken: token,
		ExpiresAt:   expiresAt.UTC(),
	})
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func setAccessTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	// httpOnly must be false to allow client-side JavaScript
	// to read the cookie and send it in the Authorization header.
	const secure, httpOnly = false, false
	c.SetCookie(accessTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", false, false)
}
