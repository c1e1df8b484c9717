package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/recompletion-service/internal/access"
	"github.com/SAP-F-2025/recompletion-service/internal/services"
	"github.com/SAP-F-2025/recompletion-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDHeader carries the id of the authenticated user, set by the gateway in front of the service.
const UserIDHeader = "X-User-ID"

// RequestContext assigns a request id and copies request metadata into the request context
// so service logs can be correlated with the HTTP request.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(utils.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set(utils.RequestIDHeader, requestID)
		}
		c.Header(utils.RequestIDHeader, requestID)

		ctx := context.WithValue(c.Request.Context(), services.RequestIDKey, requestID)
		ctx = context.WithValue(ctx, services.ClientIPKey, c.ClientIP())
		ctx = context.WithValue(ctx, services.UserAgentKey, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authenticate requires a user id and makes that user the acting user of the request.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader(UserIDHeader), 10, 32)
		if err != nil || uint(id) == access.SystemActorID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		userID := uint(id)
		c.Set("user_id", userID)
		c.Request = c.Request.WithContext(access.WithActor(c.Request.Context(), userID))
		c.Next()
	}
}
