//go:build integration

package eventrepo_test

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/internal/eventrepo"
	"github.com/go-petr/accounts-api/internal/integrationtest"
	"github.com/go-petr/accounts-api/internal/test"
	"github.com/go-petr/accounts-api/pkg/configpkg"
	"github.com/go-petr/accounts-api/pkg/dbpkg"
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

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := eventrepo.NewTxRepoPGS(tx)
	ctx := context.Background()

	payload := domain.CashoutPayload{
		AccountPayer:         42,
		FinancialTransaction: test.RandomFinancialTransaction(),
	}

	created, err := repo.Create(ctx, domain.EventCashout, payload)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, domain.EventCashout, created.Name)
	require.NotZero(t, created.CreatedAt)

	var gotPayload domain.CashoutPayload
	require.NoError(t, json.Unmarshal(created.Payload, &gotPayload))
	require.Equal(t, payload.AccountPayer, gotPayload.AccountPayer)
	require.True(t, payload.FinancialTransaction.Amount.Equal(gotPayload.FinancialTransaction.Amount))
	require.Equal(t, payload.FinancialTransaction.Currency, gotPayload.FinancialTransaction.Currency)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.JSONEq(t, string(created.Payload), string(got.Payload))

	_, err = repo.Get(ctx, -1)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestCreateTxCommits(t *testing.T) {
	t.Parallel()

	db, err := dbpkg.Setup(dbDriver, dbSource)
	require.NoError(t, err)

	repo := eventrepo.NewRepoPGS(db)
	ctx := context.Background()

	created, err := repo.CreateTx(ctx, domain.EventCashout, map[string]any{"accountPayer": 7})
	require.NoError(t, err)

	t.Cleanup(func() {
		if _, err := db.Exec(`DELETE FROM events WHERE id = $1`, created.ID); err != nil {
			t.Errorf("deleting event %d returned error: %v", created.ID, err)
		}

		if err := db.Close(); err != nil {
			t.Errorf("db.Close() returned error: %v", err)
		}
	})

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.JSONEq(t, `{"accountPayer": 7}`, string(got.Payload))
}
