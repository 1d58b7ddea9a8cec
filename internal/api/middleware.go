package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studyassistant/internal/auth"
	"studyassistant/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/time/rate"
)

const userIDKey = "userID"

// CORSMiddleware allows the frontend origin to call the API with credentials.
// An origin of "*" allows every origin.
func CORSMiddleware(origin string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	origin = strings.TrimSuffix(origin, "/")
	if origin == "" || origin == "*" {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	} else {
		config.AllowOrigins = []string{origin}
	}
	return cors.New(config)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		// Browsers cannot set headers on websocket handshakes.
		if tok := c.Query("token"); tok != "" {
			return tok, true
		}
		return "", false
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", true
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

// Identity sets the caller's user id from a bearer token when one is sent.
// Requests without a token continue anonymously; a bad token is rejected.
func Identity(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, present := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		userID, err := auth.ParseToken(secret, tok)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: msg})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// AuthRequired rejects requests that Identity did not attach a user to.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(userIDKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
			return
		}
		c.Next()
	}
}

// RateLimit allows perMinute requests per user, or per client IP for
// anonymous callers. A non-positive perMinute disables the limit.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return limit.NewRateLimiter(func(c *gin.Context) string {
		if uid := c.GetString(userIDKey); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}, func(c *gin.Context) (*rate.Limiter, time.Duration) {
		return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute), time.Hour
	}, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many requests, slow down"})
	})
}
