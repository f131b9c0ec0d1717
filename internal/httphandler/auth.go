package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Signup accepts JSON or a urlencoded form.
func (h *Handler) Signup(c *gin.Context) {
	var req interfaces.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", "Malformed signup request"))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login sets the token cookie and also returns the token for non-browser
// clients.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", "Malformed login request"))
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
