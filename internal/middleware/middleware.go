package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/blendhq/blend-server/internal/helpers"
	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")
		logger.Info("Request completed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			// Don't return error details in production
			c.JSON(500, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// tokenFromRequest pulls the session token from the access_token cookie
// or a bearer Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func userFromClaims(claims *helpers.CustomClaims) (*models.User, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, err
	}
	name := ""
	if v, ok := claims.UserMetadata["full_name"].(string); ok {
		name = v
	} else if v, ok := claims.UserMetadata["name"].(string); ok {
		name = v
	}
	return &models.User{
		ID:    userID,
		Email: claims.Email,
		Name:  name,
	}, nil
}

// resolveUser validates the token, attempting a one-shot refresh through
// the refresh_token cookie when validation fails.
func resolveUser(c *gin.Context, validator helpers.TokenValidator, authService *services.AuthService, logger *slog.Logger, isProduction bool) *models.User {
	token := tokenFromRequest(c)
	if token == "" {
		return nil
	}

	claims, err := validator.Validate(token)
	if err != nil {
		refreshToken, refreshErr := c.Cookie("refresh_token")
		if refreshErr != nil || refreshToken == "" {
			return nil
		}

		access, refresh, refreshErr := authService.RefreshToken(c.Request.Context(), refreshToken)
		if refreshErr != nil {
			logger.Debug("Token refresh failed", "error", refreshErr)
			return nil
		}

		c.SetCookie("access_token", access, 3600, "/", "", isProduction, true)
		c.SetCookie("refresh_token", refresh, 3600*24*30, "/", "", isProduction, true)

		claims, err = validator.Validate(access)
		if err != nil {
			return nil
		}
		token = access
	}

	user, err := userFromClaims(claims)
	if err != nil {
		logger.Error("Invalid user ID in token", "subject", claims.Subject, "error", err)
		return nil
	}
	c.Set("access_token", token)
	return user
}

// AuthRequired rejects requests that do not carry a valid session.
func AuthRequired(validator helpers.TokenValidator, authService *services.AuthService, logger *slog.Logger, isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolveUser(c, validator, authService, logger, isProduction)
		if user == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("not authenticated"))
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid session is present and
// lets anonymous requests through. Event listing scopes on this.
func OptionalAuth(validator helpers.TokenValidator, authService *services.AuthService, logger *slog.Logger, isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := resolveUser(c, validator, authService, logger, isProduction); user != nil {
			c.Set("user", user)
		}
		c.Next()
	}
}
