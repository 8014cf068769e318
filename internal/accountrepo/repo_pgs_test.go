//go:build integration

package accountrepo_test

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/accounts-api/internal/accountrepo"
	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/internal/integrationtest"
	"github.com/go-petr/accounts-api/internal/test"
	"github.com/go-petr/accounts-api/pkg/configpkg"
	"github.com/go-petr/accounts-api/pkg/randompkg"
)

var (
	dbDriver string
	dbSource string
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbDriver = config.DBDriver
	dbSource = config.DBSource

	os.Exit(m.Run())
}

func countByKey(t *testing.T, tx *sql.Tx, query, key string) int {
	t.Helper()

	var n int
	if err := tx.QueryRow(query, key).Scan(&n); err != nil {
		t.Fatalf("tx.QueryRow(%q, %q) returned error: %v", query, key, err)
	}

	return n
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewTxRepoPGS(tx)
	ctx := context.Background()

	addr := test.RandomAddress().Address()
	company := randompkg.String(16)
	number := randompkg.AccountNumber()

	saved, err := repo.Save(ctx, domain.Account{
		Name:        randompkg.Name(),
		Document:    randompkg.Document(),
		Email:       randompkg.Email(),
		Companies:   []domain.Company{{Name: company}},
		SubAccounts: []domain.SubAccount{{AccountNumber: number}},
		Address:     &addr,
	})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.NotZero(t, saved.Companies[0].ID)
	require.NotZero(t, saved.SubAccounts[0].ID)
	require.NotZero(t, saved.Address.ID)
	require.NotZero(t, saved.CreatedAt)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(saved, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("Get(%d) mismatch (-want +got):\n%s", saved.ID, diff)
	}

	addr.ID = saved.Address.ID
	require.Equal(t, addr, *got.Address)
}

func TestSaveUpsertsNaturalKeys(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewTxRepoPGS(tx)
	ctx := context.Background()

	company := randompkg.String(16)
	number := randompkg.AccountNumber()

	var companyIDs, subAccountIDs []int64

	for i := 0; i < 2; i++ {
		saved, err := repo.Save(ctx, domain.Account{
			Name:        randompkg.Name(),
			Document:    randompkg.Document(),
			Email:       randompkg.Email(),
			Companies:   []domain.Company{{Name: company}},
			SubAccounts: []domain.SubAccount{{AccountNumber: number}},
		})
		require.NoError(t, err)

		companyIDs = append(companyIDs, saved.Companies[0].ID)
		subAccountIDs = append(subAccountIDs, saved.SubAccounts[0].ID)
	}

	require.Equal(t, companyIDs[0], companyIDs[1])
	require.Equal(t, subAccountIDs[0], subAccountIDs[1])

	require.Equal(t, 1, countByKey(t, tx, `SELECT count(*) FROM companies WHERE name = $1`, company))
	require.Equal(t, 1, countByKey(t, tx, `SELECT count(*) FROM sub_accounts WHERE account_number = $1`, number))

	found, err := repo.FindCompanyByName(ctx, company)
	require.NoError(t, err)
	require.Equal(t, companyIDs[0], found.ID)

	foundSub, err := repo.FindSubAccountByNumber(ctx, number)
	require.NoError(t, err)
	require.Equal(t, subAccountIDs[0], foundSub.ID)
}

func TestFindByNaturalKeyNotFound(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewTxRepoPGS(tx)

	_, err := repo.FindCompanyByName(context.Background(), randompkg.String(32))
	require.ErrorIs(t, err, domain.ErrCompanyNotFound)

	_, err = repo.FindSubAccountByNumber(context.Background(), randompkg.String(32))
	require.ErrorIs(t, err, domain.ErrSubAccountNotFound)
}

func TestPreloadAndReplaceAssociations(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewTxRepoPGS(tx)
	ctx := context.Background()

	seeded := test.SeedAccount(t, tx, []string{randompkg.String(16)}, []string{randompkg.AccountNumber()})
	newName := randompkg.Name()
	newAddr := test.RandomAddress()

	arg := domain.UpdateAccountParams{Name: &newName, Address: &newAddr}

	preloaded, err := repo.Preload(ctx, seeded.ID, arg)
	require.NoError(t, err)
	require.Equal(t, newName, preloaded.Name)
	require.Equal(t, seeded.Address.ID, preloaded.Address.ID)
	require.Equal(t, newAddr.City, preloaded.Address.City)

	preloaded.SubAccounts = []domain.SubAccount{}

	saved, err := repo.Save(ctx, preloaded)
	require.NoError(t, err)

	got, err := repo.Get(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, newName, got.Name)
	require.Empty(t, got.SubAccounts)
	require.Len(t, got.Companies, 1)
	require.Equal(t, seeded.Companies[0].ID, got.Companies[0].ID)
	require.Equal(t, saved.Address.ID, got.Address.ID)
	require.Equal(t, newAddr.Street, got.Address.Street)

	_, err = repo.Preload(ctx, -1, arg)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestList(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewTxRepoPGS(tx)

	seeded := test.SeedAccounts(t, tx, 3)

	all, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)

	byID := make(map[int64]domain.Account, len(all))
	for _, a := range all {
		byID[a.ID] = a
	}

	for _, want := range seeded {
		got, ok := byID[want.ID]
		require.True(t, ok, "account %d missing from List", want.ID)

		if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
			t.Errorf("List() account %d mismatch (-want +got):\n%s", want.ID, diff)
		}
	}

	page, err := repo.List(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		id      func(t *testing.T, tx *sql.Tx) int64
		wantErr error
	}{
		{
			name: "OK",
			id: func(t *testing.T, tx *sql.Tx) int64 {
				return test.SeedAccount(t, tx, []string{randompkg.String(16)}, nil).ID
			},
		},
		{
			name: "NotFound",
			id: func(t *testing.T, tx *sql.Tx) int64 {
				return -1
			},
			wantErr: domain.NotFoundError{ID: -1},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tx := integrationtest.SetupTX(t, dbDriver, dbSource)
			repo := accountrepo.NewTxRepoPGS(tx)
			id := tc.id(t, tx)

			var addressID sql.NullInt64
			if tc.wantErr == nil {
				err := tx.QueryRow(`SELECT address_id FROM accounts WHERE id = $1`, id).Scan(&addressID)
				require.NoError(t, err)
			}

			err := repo.Delete(context.Background(), id)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
				require.EqualError(t, err, tc.wantErr.Error())

				return
			}

			require.NoError(t, err)

			_, err = repo.Get(context.Background(), id)
			require.True(t, errors.Is(err, domain.ErrAccountNotFound))

			var n int
			err = tx.QueryRow(`SELECT count(*) FROM addresses WHERE id = $1`, addressID.Int64).Scan(&n)
			require.NoError(t, err)
			require.Zero(t, n)
		})
	}
}

func TestSaveDuplicateDocument(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := accountrepo.NewTxRepoPGS(tx)

	seeded := test.SeedAccount(t, tx, nil, nil)

	_, err := repo.Save(context.Background(), domain.Account{
		Name:     randompkg.Name(),
		Document: seeded.Document,
		Email:    randompkg.Email(),
	})
	require.ErrorIs(t, err, domain.ErrDocumentAlreadyExists)
}
