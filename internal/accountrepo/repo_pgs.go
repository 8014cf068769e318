// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/pkg/dbpkg"
	"github.com/go-petr/accounts-api/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db        dbpkg.SQLInterface
	connector dbpkg.Connector
}

// NewTxRepoPGS returns account RepoPGS bound to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns account RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:        db,
		connector: dbpkg.NewConnector(db),
	}
}

type accountRow struct {
	account   domain.Account
	addressID sql.NullInt64
}

func scanAccount(s interface{ Scan(...any) error }) (accountRow, error) {
	var r accountRow

	err := s.Scan(
		&r.account.ID,
		&r.account.Name,
		&r.account.Document,
		&r.account.Email,
		&r.addressID,
		&r.account.CreatedAt,
		&r.account.UpdatedAt,
	)

	return r, err
}

const listQuery = `
SELECT
	id, name, document, email, address_id, created_at, updated_at
FROM accounts
ORDER BY id
LIMIT NULLIF($1, 0) OFFSET $2
`

// List returns a page of accounts with their relations. Zero limit means no limit.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []accountRow{}

	for rows.Next() {
		row, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, row)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return r.withRelations(ctx, items)
}

const getQuery = `
SELECT
	id, name, document, email, address_id, created_at, updated_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id and its relations.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.NotFoundError{ID: id}
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	accounts, err := r.withRelations(ctx, []accountRow{row})
	if err != nil {
		return domain.Account{}, err
	}

	return accounts[0], nil
}

// Preload loads the account with the given id and merges the present fields of arg onto it.
func (r *RepoPGS) Preload(ctx context.Context, id int64, arg domain.UpdateAccountParams) (domain.Account, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return a, err
	}

	a.Apply(arg)

	return a, nil
}

const findCompanyQuery = `
SELECT id, name, created_at FROM companies
WHERE name = $1
`

// FindCompanyByName returns the company with the given name.
func (r *RepoPGS) FindCompanyByName(ctx context.Context, name string) (domain.Company, error) {
	l := zerolog.Ctx(ctx)

	var c domain.Company

	err := r.db.QueryRowContext(ctx, findCompanyQuery, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, domain.ErrCompanyNotFound
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const findSubAccountQuery = `
SELECT id, account_number, created_at FROM sub_accounts
WHERE account_number = $1
`

// FindSubAccountByNumber returns the sub-account with the given account number.
func (r *RepoPGS) FindSubAccountByNumber(ctx context.Context, number string) (domain.SubAccount, error) {
	l := zerolog.Ctx(ctx)

	var s domain.SubAccount

	err := r.db.QueryRowContext(ctx, findSubAccountQuery, number).Scan(&s.ID, &s.AccountNumber, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, domain.ErrSubAccountNotFound
		}

		l.Error().Err(err).Send()

		return s, errorspkg.ErrInternal
	}

	return s, nil
}

// Save persists the account graph and returns it with generated ids.
//
// The account is inserted when its ID is zero and updated otherwise. Unsaved
// companies and sub-accounts are upserted by natural key, and the association
// sets are replaced with the given ones. Everything runs in one transaction.
func (r *RepoPGS) Save(ctx context.Context, a domain.Account) (domain.Account, error) {
	if r.connector == nil {
		return r.saveGraph(ctx, a)
	}

	var saved domain.Account

	err := dbpkg.InTx(ctx, r.connector, func(q dbpkg.SQLInterface) error {
		var err error
		saved, err = NewTxRepoPGS(q).saveGraph(ctx, a)

		return err
	})
	if err != nil {
		return domain.Account{}, err
	}

	return saved, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = $1
RETURNING address_id
`

const deleteAddressQuery = `
DELETE FROM addresses
WHERE id = $1
`

// Delete removes the account with the given id together with its address.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	if r.connector == nil {
		return r.delete(ctx, id)
	}

	return dbpkg.InTx(ctx, r.connector, func(q dbpkg.SQLInterface) error {
		return NewTxRepoPGS(q).delete(ctx, id)
	})
}

func (r *RepoPGS) delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	var addressID sql.NullInt64

	if err := r.db.QueryRowContext(ctx, deleteQuery, id).Scan(&addressID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{ID: id}
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	if !addressID.Valid {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, deleteAddressQuery, addressID.Int64); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func mapSaveError(ctx context.Context, err error) error {
	l := zerolog.Ctx(ctx)
	l.Error().Err(err).Send()

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_document_key" {
		return domain.ErrDocumentAlreadyExists
	}

	return errorspkg.ErrInternal
}
