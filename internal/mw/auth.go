package mw

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/model"
)

const accountKey = "account"

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Account, error)
}

// Require authenticates the request and checks that the account's role
// may perform action. It answers 401 without a valid token and 403 when the
// role is not allowed.
func Require(a Authenticator, action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := a.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			kind := apperr.KindOf(err)
			if kind == apperr.KindInternal {
				log.Printf("Error authenticating request: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
				return
			}
			c.AbortWithStatusJSON(kind.Status(), gin.H{"message": apperr.Message(err, "Unauthorized")})
			return
		}
		if !auth.Allowed(account.Role, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Set(accountKey, *account)
		c.Next()
	}
}

// Identify attaches the account when a valid token is present and lets
// anonymous requests through.
func Identify(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if account, err := a.Authenticate(c.Request.Context(), header); err == nil {
				c.Set(accountKey, *account)
			}
		}
		c.Next()
	}
}

// Account returns the account set by Require or Identify.
func Account(c *gin.Context) (model.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return model.Account{}, false
	}
	account, ok := v.(model.Account)
	return account, ok
}

// MustAccount returns the account set by Require. It panics on routes
// without Require.
func MustAccount(c *gin.Context) model.Account {
	return c.MustGet(accountKey).(model.Account)
}
