package middlewares

import (
	"net/http"

	"dailydiet/utils"

	"github.com/gin-gonic/gin"
)

const sessionKey = "sessionID"

// SessionCookie copies the session token from the named cookie into the gin
// context in canonical lowercase form. Malformed values are ignored as if no
// cookie was sent.
func SessionCookie(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(name); err == nil {
			if tok, ok := utils.CanonicalToken(v); ok {
				c.Set(sessionKey, tok)
			}
		}
		c.Next()
	}
}

// RequireSession rejects requests that carry no session token.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "You are unauthorized to execute this operation"})
			return
		}
		c.Next()
	}
}

// SessionID returns the token placed in the context by SessionCookie.
func SessionID(c *gin.Context) (string, bool) {
	v := c.GetString(sessionKey)
	return v, v != ""
}
