package accountrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const listAddressesQuery = `
SELECT
	id, street, number, complement, district, city, state, zip_code, country
FROM addresses
WHERE id = ANY($1)
`

const listCompaniesQuery = `
SELECT
	ac.account_id, c.id, c.name, c.created_at
FROM account_companies ac
JOIN companies c ON c.id = ac.company_id
WHERE ac.account_id = ANY($1)
ORDER BY ac.account_id, ac.position
`

const listSubAccountsQuery = `
SELECT
	asa.account_id, s.id, s.account_number, s.created_at
FROM account_sub_accounts asa
JOIN sub_accounts s ON s.id = asa.sub_account_id
WHERE asa.account_id = ANY($1)
ORDER BY asa.account_id, asa.position
`

// withRelations attaches addresses, companies and sub-accounts to the rows
// with one batched query per relation.
func (r *RepoPGS) withRelations(ctx context.Context, rows []accountRow) ([]domain.Account, error) {
	accounts := make([]domain.Account, len(rows))
	byAccount := make(map[int64]int, len(rows))
	byAddress := make(map[int64]int)
	ids := make([]int64, 0, len(rows))
	addressIDs := []int64{}

	for i, row := range rows {
		a := row.account
		a.Companies = []domain.Company{}
		a.SubAccounts = []domain.SubAccount{}

		accounts[i] = a
		byAccount[a.ID] = i
		ids = append(ids, a.ID)

		if row.addressID.Valid {
			byAddress[row.addressID.Int64] = i
			addressIDs = append(addressIDs, row.addressID.Int64)
		}
	}

	if len(ids) == 0 {
		return accounts, nil
	}

	if len(addressIDs) > 0 {
		err := r.each(ctx, listAddressesQuery, pq.Array(addressIDs), func(rows *sql.Rows) error {
			var addr domain.Address
			if err := rows.Scan(
				&addr.ID,
				&addr.Street,
				&addr.Number,
				&addr.Complement,
				&addr.District,
				&addr.City,
				&addr.State,
				&addr.ZipCode,
				&addr.Country,
			); err != nil {
				return err
			}

			accounts[byAddress[addr.ID]].Address = &addr

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err := r.each(ctx, listCompaniesQuery, pq.Array(ids), func(rows *sql.Rows) error {
		var (
			accountID int64
			c         domain.Company
		)

		if err := rows.Scan(&accountID, &c.ID, &c.Name, &c.CreatedAt); err != nil {
			return err
		}

		i := byAccount[accountID]
		accounts[i].Companies = append(accounts[i].Companies, c)

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.each(ctx, listSubAccountsQuery, pq.Array(ids), func(rows *sql.Rows) error {
		var (
			accountID int64
			s         domain.SubAccount
		)

		if err := rows.Scan(&accountID, &s.ID, &s.AccountNumber, &s.CreatedAt); err != nil {
			return err
		}

		i := byAccount[accountID]
		accounts[i].SubAccounts = append(accounts[i].SubAccounts, s)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *RepoPGS) each(ctx context.Context, query string, arg any, scan func(rows *sql.Rows) error) error {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
