package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the registration payload.
type CreateAccountRequest struct {
	Username    string           `json:"username" validate:"required,max=150"`
	Email       string           `json:"email" validate:"required,email,max=254"`
	Password    string           `json:"password" validate:"required"`
	FirstName   string           `json:"first_name" validate:"required,max=30"`
	LastName    string           `json:"last_name" validate:"required,max=150"`
	Birthdate   string           `json:"birthdate" validate:"required,datetime=2006-01-02"`
	NationalID  *int64           `json:"nationalid"`
	PhoneNumber string           `json:"phonenumber" validate:"required,max=20"`
	Wallet      *decimal.Decimal `json:"wallet"`
}

// UpdateAccountRequest is a partial update; nil fields are left as they are.
type UpdateAccountRequest struct {
	Username    *string          `json:"username" validate:"omitnil,min=1,max=150"`
	Email       *string          `json:"email" validate:"omitnil,email,max=254"`
	Password    *string          `json:"password" validate:"omitnil,min=1"`
	FirstName   *string          `json:"first_name" validate:"omitnil,max=30"`
	LastName    *string          `json:"last_name" validate:"omitnil,max=150"`
	Birthdate   *string          `json:"birthdate" validate:"omitnil,datetime=2006-01-02"`
	NationalID  OptionalInt64    `json:"nationalid"`
	PhoneNumber *string          `json:"phonenumber" validate:"omitnil,min=1,max=20"`
	Wallet      *decimal.Decimal `json:"wallet"`
}

// OptionalInt64 tells an absent field apart from an explicit null.
// Set is true when the key was present; Value is nil for null.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON is only invoked when the key is present.
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// AccountSummary is returned after registration.
type AccountSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AccountProfile is the caller's full profile.
type AccountProfile struct {
	AccountSummary
	Birthdate   string          `json:"birthdate"`
	NationalID  *int64          `json:"nationalid"`
	PhoneNumber string          `json:"phonenumber"`
	Wallet      decimal.Decimal `json:"wallet"`
}

// TokenRequest carries login credentials; the identifier may be a username or an email.
type TokenRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// TokenPairResponse holds a freshly issued access and refresh token.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse holds the new access token.
type RefreshResponse struct {
	Access string `json:"access"`
}
