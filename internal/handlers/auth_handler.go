package handlers

import (
	"fmt"
	"net/http"

	"github.com/blendhq/blend-server/internal/config"
	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	accessTokenTTL  = 3600
	refreshTokenTTL = 3600 * 24 * 30
)

func setSessionCookies(c *gin.Context, access, refresh string, isProduction bool) {
	c.SetCookie("access_token", access, accessTokenTTL, "/", "", isProduction, true)
	if refresh != "" {
		c.SetCookie("refresh_token", refresh, refreshTokenTTL, "/", "", isProduction, true)
	}
}

type signInRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type signUpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// SignIn starts a session for an existing user. On the hosted backend
// this sends a magic link and returns no token; the mock backend
// returns the session inline.
func SignIn(a *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, token, err := a.SignIn(c.Request.Context(), req.Email)
		if err != nil {
			respondError(c, err)
			return
		}

		if token == "" {
			c.JSON(http.StatusOK, models.SuccessResponse(nil, "Check your email for a sign-in link"))
			return
		}

		setSessionCookies(c, token, "", cfg.IsProduction())
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"user":         user,
			"access_token": token,
		}, "Signed in successfully"))
	}
}

// SignUp creates a new account.
func SignUp(a *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, token, err := a.SignUp(c.Request.Context(), req.Email, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}

		if token == "" {
			c.JSON(http.StatusCreated, models.SuccessResponse(nil, "Check your email to confirm your account"))
			return
		}

		setSessionCookies(c, token, "", cfg.IsProduction())
		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{
			"user":         user,
			"access_token": token,
		}, "Account created successfully"))
	}
}

// GoogleAuth initiates the Google OAuth flow
func GoogleAuth(a *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirectTo := c.Query("redirect_to")
		if redirectTo == "" {
			redirectTo = cfg.FrontendURL + "/auth/callback"
		}

		authURL, err := a.SignInWithGoogle(c.Request.Context(), redirectTo)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, authURL)
	}
}

// GoogleAuthCallback handles the return leg of the OAuth flow. Tokens
// arrive as URL fragments handled client-side, so this endpoint only
// forwards errors and hands off to the frontend callback page.
func GoogleAuthCallback(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oauthErr := c.Query("error")
		if oauthErr != "" {
			redirectURL := fmt.Sprintf("%s/auth/signin?error=%s&error_description=%s",
				cfg.FrontendURL, oauthErr, c.Query("error_description"))
			c.Redirect(http.StatusTemporaryRedirect, redirectURL)
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, cfg.FrontendURL+"/auth/callback")
	}
}

// Logout revokes the session and clears auth cookies.
func Logout(a *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		isProduction := cfg.IsProduction()

		if token, err := c.Cookie("access_token"); err == nil && token != "" {
			// Revocation is best effort; cookies get cleared either way.
			_ = a.SignOut(c.Request.Context(), token)
		}

		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("refresh_token", "", -1, "/", "", isProduction, true)

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}

// GetCurrentUser returns the authenticated caller.
func GetCurrentUser(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		if token := c.GetString("access_token"); token != "" {
			if fresh, err := a.GetCurrentUser(c.Request.Context(), token); err == nil {
				user = fresh
			}
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

// RefreshToken rotates the session using the refresh_token cookie.
func RefreshToken(a *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("missing refresh token"))
			return
		}

		access, refresh, err := a.RefreshToken(c.Request.Context(), refreshToken)
		if err != nil {
			respondError(c, err)
			return
		}

		setSessionCookies(c, access, refresh, cfg.IsProduction())
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"access_token": access,
		}, "Session refreshed"))
	}
}

// GetProfile returns a user's public profile.
func GetProfile(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID format"))
			return
		}

		profile, err := a.GetProfile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

// UpdateMyProfile applies partial updates to the caller's profile.
func UpdateMyProfile(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		var updates map[string]any
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		profile, err := a.UpdateProfile(c.Request.Context(), user.ID, updates)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(profile, "Profile updated successfully"))
	}
}
