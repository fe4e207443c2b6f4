package apitest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	errNoAuthHeader = errors.New("authorization header required")
	errAuthFormat   = errors.New("invalid authorization format")
	errBadToken     = errors.New("invalid token")
)

// AuthRequired guards the admin routes. Only the token handed out by the
// login route is accepted; the backend answers 401 {"message": ...} otherwise.
func AuthRequired(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, err := bearerToken(c.Request)
		if err == nil && got != token {
			err = errBadToken
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoAuthHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" || strings.ContainsRune(token, ' ') {
		return "", errAuthFormat
	}
	return token, nil
}
