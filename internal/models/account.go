package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account captures identity and profile fields for a registered user.
type Account struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Birthdate    time.Time       `json:"-"`
	NationalID   *int64          `json:"nationalid"`
	PhoneNumber  string          `json:"phonenumber"`
	Wallet       decimal.Decimal `json:"wallet"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BirthdateLayout is the wire format for birthdates.
const BirthdateLayout = "2006-01-02"

// AccountChanges lists the fields an update may touch. Nil means unchanged;
// ClearNationalID removes the national id.
type AccountChanges struct {
	Username        *string
	Email           *string
	PasswordHash    *string
	FirstName       *string
	LastName        *string
	Birthdate       *time.Time
	NationalID      *int64
	ClearNationalID bool
	PhoneNumber     *string
	Wallet          *decimal.Decimal
}

// Empty reports whether no field is set.
func (c AccountChanges) Empty() bool {
	return c.Username == nil && c.Email == nil && c.PasswordHash == nil &&
		c.FirstName == nil && c.LastName == nil && c.Birthdate == nil &&
		c.NationalID == nil && !c.ClearNationalID && c.PhoneNumber == nil && c.Wallet == nil
}

// Apply returns a copy of a with the set fields replaced.
func (c AccountChanges) Apply(a Account) Account {
	if c.Username != nil {
		a.Username = *c.Username
	}
	if c.Email != nil {
		a.Email = *c.Email
	}
	if c.PasswordHash != nil {
		a.PasswordHash = *c.PasswordHash
	}
	if c.FirstName != nil {
		a.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		a.LastName = *c.LastName
	}
	if c.Birthdate != nil {
		a.Birthdate = *c.Birthdate
	}
	switch {
	case c.ClearNationalID:
		a.NationalID = nil
	case c.NationalID != nil:
		id := *c.NationalID
		a.NationalID = &id
	}
	if c.PhoneNumber != nil {
		a.PhoneNumber = *c.PhoneNumber
	}
	if c.Wallet != nil {
		a.Wallet = *c.Wallet
	}
	return a
}
