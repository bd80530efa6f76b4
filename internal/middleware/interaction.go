package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/openfin/accounts-api/internal/token"
)

// HeaderInteractionID is the traceability header echoed on every response.
const HeaderInteractionID = "x-fapi-interaction-id"

// InteractionID reads the caller's interaction id, mints one when the header
// is absent, and echoes it on the response before any handler runs. The same
// value is available to handlers via GetInteractionID, so error responses
// carry it too.
func InteractionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderInteractionID)
		if id == "" {
			id = token.New("int")
		}
		c.Set("interactionId", id)
		c.Header(HeaderInteractionID, id)
		c.Next()
	}
}

func GetInteractionID(c *gin.Context) (string, bool) {
	id, exists := c.Get("interactionId")
	if !exists {
		return "", false
	}
	return id.(string), true
}
