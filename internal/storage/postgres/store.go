package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hongminglow/accounts-be/internal/dbx"
	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
	"github.com/hongminglow/accounts-be/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage.AccountStore interface at compile time.
var _ storage.AccountStore = (*Store)(nil)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for accounts. Identity columns
// live in the identity schema; the wallet balance lives in the app schema.
type Store struct {
	db *sql.DB
}

// Open connects through the pgx stdlib driver and runs migrations.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := NewStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded goose migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := gooseUp(ctx, s.db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const selectAccount = `
	SELECT a.id, a.username, a.email, a.password_hash, a.first_name, a.last_name,
	       a.birthdate, a.national_id, a.phone_number, w.balance, a.created_at, a.updated_at
	FROM identity.accounts a
	JOIN app.wallets w ON w.account_id = a.id`

// CreateAccount inserts the identity row and its wallet in one transaction.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const insertAccount = `
		INSERT INTO identity.accounts
			(username, email, password_hash, first_name, last_name, birthdate, national_id, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	const insertWallet = `INSERT INTO app.wallets (account_id, balance) VALUES ($1, $2)`

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		row := tx.QueryRowContext(ctx, insertAccount,
			account.Username, account.Email, account.PasswordHash, account.FirstName, account.LastName,
			account.Birthdate, nullableInt(account.NationalID), account.PhoneNumber)
		if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertWallet, account.ID, account.Wallet)
		return err
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("create account: %w", translate(err))
	}
	return account, nil
}

// FindByID fetches an account by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.Account, error) {
	return s.findOne(ctx, selectAccount+` WHERE a.id = $1`, id)
}

// FindByUsername fetches an account by exact username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	return s.findOne(ctx, selectAccount+` WHERE a.username = $1`, username)
}

// FindByEmail fetches an account by exact email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.findOne(ctx, selectAccount+` WHERE a.email = $1`, email)
}

// UpdateAccount locks the row, applies changes, and writes both tables back.
func (s *Store) UpdateAccount(ctx context.Context, id int64, changes models.AccountChanges) (models.Account, error) {
	const updateAccount = `
		UPDATE identity.accounts
		SET username = $2, email = $3, password_hash = $4, first_name = $5, last_name = $6,
		    birthdate = $7, national_id = $8, phone_number = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	const updateWallet = `UPDATE app.wallets SET balance = $2 WHERE account_id = $1`

	var updated models.Account
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := scanAccount(tx.QueryRowContext(ctx, selectAccount+` WHERE a.id = $1 FOR UPDATE OF a`, id))
		if err != nil {
			return err
		}
		updated = changes.Apply(current)
		row := tx.QueryRowContext(ctx, updateAccount, id,
			updated.Username, updated.Email, updated.PasswordHash, updated.FirstName, updated.LastName,
			updated.Birthdate, nullableInt(updated.NationalID), updated.PhoneNumber)
		if err := row.Scan(&updated.UpdatedAt); err != nil {
			return err
		}
		if changes.Wallet != nil {
			if _, err := tx.ExecContext(ctx, updateWallet, id, updated.Wallet); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("update account %d: %w", id, translate(err))
	}
	return updated, nil
}

// DeleteAccount removes the identity row; the wallet goes with it via ON DELETE CASCADE.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM identity.accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, query string, arg any) (models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, err
		}
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var account models.Account
	var nationalID sql.NullInt64
	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.FirstName, &account.LastName, &account.Birthdate, &nationalID, &account.PhoneNumber,
		&account.Wallet, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, err
	}
	if nationalID.Valid {
		id := nationalID.Int64
		account.NationalID = &id
	}
	return account, nil
}

// translate maps unique violations onto storage.ConflictError.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return &storage.ConflictError{Field: "username"}
		case strings.Contains(pgErr.ConstraintName, "email"):
			return &storage.ConflictError{Field: "email"}
		}
		return storage.ErrAlreadyExists
	}
	return err
}

func nullableInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
