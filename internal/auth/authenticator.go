package auth

import (
	"context"
	"errors"
	"strings"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// AccountLookup loads an account by id.
type AccountLookup interface {
	AccountByID(ctx context.Context, id uint) (*model.Account, error)
}

// Authenticator turns a bearer token into the account it was issued for.
// The account is reloaded on every call so deleted accounts lose access.
type Authenticator struct {
	tokens   *Tokens
	accounts AccountLookup
}

func NewAuthenticator(tokens *Tokens, accounts AccountLookup) *Authenticator {
	return &Authenticator{tokens: tokens, accounts: accounts}
}

// Authenticate validates token and returns its account. Every failure is
// reported as Unauthorized; lookup errors other than a missing account are
// passed through.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*model.Account, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	account, err := a.accounts.AccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("Unauthorized")
		}
		return nil, err
	}
	return account, nil
}
