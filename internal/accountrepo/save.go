package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/accounts-api/internal/domain"
)

const insertAddressQuery = `
INSERT INTO
    addresses (street, number, complement, district, city, state, zip_code, country)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`

const updateAddressQuery = `
UPDATE addresses
SET street = $2, number = $3, complement = $4, district = $5,
    city = $6, state = $7, zip_code = $8, country = $9
WHERE id = $1
`

const insertAccountQuery = `
INSERT INTO
    accounts (name, document, email, address_id)
VALUES
    ($1, $2, $3, $4)
RETURNING id, created_at, updated_at
`

const updateAccountQuery = `
UPDATE accounts
SET name = $2, document = $3, email = $4, address_id = $5, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at
`

// The no-op update makes RETURNING yield the existing row on conflict.
const upsertCompanyQuery = `
INSERT INTO companies (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, created_at
`

const upsertSubAccountQuery = `
INSERT INTO sub_accounts (account_number)
VALUES ($1)
ON CONFLICT (account_number) DO UPDATE SET account_number = EXCLUDED.account_number
RETURNING id, account_number, created_at
`

const clearCompaniesQuery = `
DELETE FROM account_companies
WHERE account_id = $1
`

const linkCompanyQuery = `
INSERT INTO account_companies (account_id, company_id, position)
VALUES ($1, $2, $3)
`

const clearSubAccountsQuery = `
DELETE FROM account_sub_accounts
WHERE account_id = $1
`

const linkSubAccountQuery = `
INSERT INTO account_sub_accounts (account_id, sub_account_id, position)
VALUES ($1, $2, $3)
`

// saveGraph must run inside a transaction.
func (r *RepoPGS) saveGraph(ctx context.Context, a domain.Account) (domain.Account, error) {
	var addressID sql.NullInt64

	if a.Address != nil {
		addr, err := r.saveAddress(ctx, *a.Address)
		if err != nil {
			return domain.Account{}, err
		}

		a.Address = &addr
		addressID = sql.NullInt64{Int64: addr.ID, Valid: true}
	}

	if a.ID == 0 {
		err := r.db.QueryRowContext(ctx, insertAccountQuery, a.Name, a.Document, a.Email, addressID).
			Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return domain.Account{}, mapSaveError(ctx, err)
		}
	} else {
		err := r.db.QueryRowContext(ctx, updateAccountQuery, a.ID, a.Name, a.Document, a.Email, addressID).
			Scan(&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.Account{}, domain.NotFoundError{ID: a.ID}
			}

			return domain.Account{}, mapSaveError(ctx, err)
		}
	}

	companies, err := r.saveCompanies(ctx, a.ID, a.Companies)
	if err != nil {
		return domain.Account{}, err
	}

	subAccounts, err := r.saveSubAccounts(ctx, a.ID, a.SubAccounts)
	if err != nil {
		return domain.Account{}, err
	}

	a.Companies, a.SubAccounts = companies, subAccounts

	return a, nil
}

func (r *RepoPGS) saveAddress(ctx context.Context, addr domain.Address) (domain.Address, error) {
	if addr.ID == 0 {
		err := r.db.QueryRowContext(ctx, insertAddressQuery,
			addr.Street,
			addr.Number,
			addr.Complement,
			addr.District,
			addr.City,
			addr.State,
			addr.ZipCode,
			addr.Country,
		).Scan(&addr.ID)
		if err != nil {
			return addr, mapSaveError(ctx, err)
		}

		return addr, nil
	}

	_, err := r.db.ExecContext(ctx, updateAddressQuery,
		addr.ID,
		addr.Street,
		addr.Number,
		addr.Complement,
		addr.District,
		addr.City,
		addr.State,
		addr.ZipCode,
		addr.Country,
	)
	if err != nil {
		return addr, mapSaveError(ctx, err)
	}

	return addr, nil
}

func (r *RepoPGS) saveCompanies(ctx context.Context, accountID int64, in []domain.Company) ([]domain.Company, error) {
	out := make([]domain.Company, len(in))

	if _, err := r.db.ExecContext(ctx, clearCompaniesQuery, accountID); err != nil {
		return nil, mapSaveError(ctx, err)
	}

	for i, c := range in {
		if c.ID == 0 {
			err := r.db.QueryRowContext(ctx, upsertCompanyQuery, c.Name).Scan(&c.ID, &c.Name, &c.CreatedAt)
			if err != nil {
				return nil, mapSaveError(ctx, err)
			}
		}

		if _, err := r.db.ExecContext(ctx, linkCompanyQuery, accountID, c.ID, i); err != nil {
			return nil, mapSaveError(ctx, err)
		}

		out[i] = c
	}

	return out, nil
}

func (r *RepoPGS) saveSubAccounts(ctx context.Context, accountID int64, in []domain.SubAccount) ([]domain.SubAccount, error) {
	out := make([]domain.SubAccount, len(in))

	if _, err := r.db.ExecContext(ctx, clearSubAccountsQuery, accountID); err != nil {
		return nil, mapSaveError(ctx, err)
	}

	for i, s := range in {
		if s.ID == 0 {
			err := r.db.QueryRowContext(ctx, upsertSubAccountQuery, s.AccountNumber).
				Scan(&s.ID, &s.AccountNumber, &s.CreatedAt)
			if err != nil {
				return nil, mapSaveError(ctx, err)
			}
		}

		if _, err := r.db.ExecContext(ctx, linkSubAccountQuery, accountID, s.ID, i); err != nil {
			return nil, mapSaveError(ctx, err)
		}

		out[i] = s
	}

	return out, nil
}
