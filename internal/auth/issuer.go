package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
)

// AccountFinder is the read side of the credential store the issuer needs.
type AccountFinder interface {
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

// Issuer turns credentials into token pairs and refresh tokens into access tokens.
type Issuer struct {
	accounts AccountFinder
	tokens   *TokenManager
	emails   *validator.Validate
}

// NewIssuer wires an Issuer.
func NewIssuer(accounts AccountFinder, tokens *TokenManager) *Issuer {
	return &Issuer{accounts: accounts, tokens: tokens, emails: validator.New()}
}

type lookup func(ctx context.Context, value string) (models.Account, error)

// lookups returns the unique-field lookups to try, in order. Identifiers that
// look like an email try the email column first and fall back to username.
func (i *Issuer) lookups(identifier string) []lookup {
	if i.emails.Var(identifier, "email") == nil {
		return []lookup{i.accounts.FindByEmail, i.accounts.FindByUsername}
	}
	return []lookup{i.accounts.FindByUsername}
}

// Issue verifies the credential pair and mints an access/refresh pair.
// Unknown identifiers and wrong passwords both return ErrInvalidCredentials.
func (i *Issuer) Issue(ctx context.Context, identifier, password string) (TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	account, err := i.resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			burnComparison(password)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("resolve account: %w", err)
	}
	if !CheckPassword(account.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return i.tokens.IssuePair(account)
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself stays usable until it expires.
func (i *Issuer) Refresh(refreshToken string) (string, error) {
	id, err := i.tokens.Verify(strings.TrimSpace(refreshToken), RefreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	access, _, err := i.tokens.IssueAccess(id)
	return access, err
}

func (i *Issuer) resolve(ctx context.Context, identifier string) (models.Account, error) {
	if identifier == "" {
		return models.Account{}, storage.ErrNotFound
	}
	for _, find := range i.lookups(identifier) {
		account, err := find(ctx, identifier)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, err
		}
	}
	return models.Account{}, storage.ErrNotFound
}
