// Package accounts implements registration and self-service profile management.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/models/dto"
	"github.com/hongminglow/accounts-be/internal/storage"
)

// Service validates account payloads and writes them to the credential store.
type Service struct {
	store      storage.AccountStore
	validate   *validator.Validate
	minEntropy float64
	log        logging.Logger
}

// NewService wires a Service. minEntropy <= 0 disables the password strength check.
func NewService(store storage.AccountStore, minEntropy float64, log logging.Logger) *Service {
	return &Service{
		store:      store,
		validate:   newValidator(),
		minEntropy: minEntropy,
		log:        logging.ForModule(log, "accounts"),
	}
}

// Create registers a new account. The password is hashed before it is stored.
func (s *Service) Create(ctx context.Context, req dto.CreateAccountRequest) (models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Birthdate = strings.TrimSpace(req.Birthdate)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	verr := collect(s.validate, req)
	checkPassword(verr, req.Password, s.minEntropy)
	wallet := decimal.Zero
	if req.Wallet != nil {
		wallet = *req.Wallet
		checkWallet(verr, wallet)
	}
	if !verr.empty() {
		return models.Account{}, verr
	}

	birthdate, _ := time.Parse(models.BirthdateLayout, req.Birthdate)
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateAccount(ctx, models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Birthdate:    birthdate,
		NationalID:   req.NationalID,
		PhoneNumber:  req.PhoneNumber,
		Wallet:       wallet,
	})
	if err != nil {
		return models.Account{}, storeError(err)
	}
	s.log.Info(ctx, "account created", "account_id", created.ID)
	return created, nil
}

// Get returns the caller's own account.
func (s *Service) Get(ctx context.Context, id auth.Identity) (models.Account, error) {
	account, err := s.store.FindByID(ctx, id.AccountID)
	if err != nil {
		return models.Account{}, storeError(err)
	}
	return account, nil
}

// Update applies a partial update to the caller's own account. The password
// is re-hashed only when a new one is supplied.
func (s *Service) Update(ctx context.Context, id auth.Identity, req dto.UpdateAccountRequest) (models.Account, error) {
	trim(req.Username, req.Email, req.FirstName, req.LastName, req.Birthdate, req.PhoneNumber)

	verr := collect(s.validate, req)
	if req.Password != nil {
		checkPassword(verr, *req.Password, s.minEntropy)
	}
	if req.Wallet != nil {
		checkWallet(verr, *req.Wallet)
	}
	if !verr.empty() {
		return models.Account{}, verr
	}

	changes := models.AccountChanges{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Wallet:      req.Wallet,
	}
	if req.NationalID.Set {
		changes.NationalID = req.NationalID.Value
		changes.ClearNationalID = req.NationalID.Value == nil
	}
	if req.Birthdate != nil {
		bd, _ := time.Parse(models.BirthdateLayout, *req.Birthdate)
		changes.Birthdate = &bd
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return models.Account{}, fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = &hash
	}
	if changes.Empty() {
		return s.Get(ctx, id)
	}

	updated, err := s.store.UpdateAccount(ctx, id.AccountID, changes)
	if err != nil {
		return models.Account{}, storeError(err)
	}
	s.log.Info(ctx, "account updated", "account_id", id.AccountID, "password_changed", req.Password != nil)
	return updated, nil
}

// Delete removes the caller's own account permanently.
func (s *Service) Delete(ctx context.Context, id auth.Identity) error {
	if err := s.store.DeleteAccount(ctx, id.AccountID); err != nil {
		return storeError(err)
	}
	s.log.Info(ctx, "account deleted", "account_id", id.AccountID)
	return nil
}

// storeError maps store failures onto the service taxonomy. A token whose
// account no longer exists is treated as invalid.
func storeError(err error) error {
	var conflict *storage.ConflictError
	switch {
	case errors.As(err, &conflict):
		return conflictError(conflict.Field)
	case errors.Is(err, storage.ErrAlreadyExists):
		return conflictError("username")
	case errors.Is(err, storage.ErrNotFound):
		return auth.ErrInvalidToken
	default:
		return err
	}
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
