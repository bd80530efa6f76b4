package middleware

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecretOnce sync.Once
	jwtSecretVal  []byte
)

func jwtSecret() []byte {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			panic("JWT_SECRET environment variable is not set")
		}
		jwtSecretVal = []byte(secret)
	})
	return jwtSecretVal
}

// Claims is the access-token payload issued to third-party organisations.
// ConsentID scopes what may be read; OrganizationID identifies the caller
// for rate limiting and auditing.
type Claims struct {
	ConsentID      string `json:"consentId"`
	OrganizationID string `json:"orgId"`
	jwt.RegisteredClaims
}

// AuthMiddleware parses the bearer token and places consent and
// organisation ids on the request context. Token issuance is out of scope;
// only the shared-secret verification side lives here.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims := &Claims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			return jwtSecret(), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if claims.ConsentID == "" || claims.OrganizationID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Token is missing consent or organisation claims",
			})
			c.Abort()
			return
		}

		c.Set("consentId", claims.ConsentID)
		c.Set("organizationId", claims.OrganizationID)
		c.Next()
	}
}

func GetConsentID(c *gin.Context) (string, bool) {
	consentID, exists := c.Get("consentId")
	if !exists {
		return "", false
	}
	return consentID.(string), true
}

func GetOrganizationID(c *gin.Context) (string, bool) {
	organizationID, exists := c.Get("organizationId")
	if !exists {
		return "", false
	}
	return organizationID.(string), true
}
