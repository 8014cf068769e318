// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/go-petr/accounts-api/internal/accountrepo"
	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/pkg/dbpkg"
	"github.com/go-petr/accounts-api/pkg/randompkg"
)

// SeedAccount creates random Account with the given companies and sub-accounts inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, companies, subAccounts []string) domain.Account {
	t.Helper()

	addr := RandomAddress().Address()

	a := domain.Account{
		Name:     randompkg.Name(),
		Document: randompkg.Document(),
		Email:    randompkg.Email(),
		Address:  &addr,
	}

	for _, name := range companies {
		a.Companies = append(a.Companies, domain.Company{Name: name})
	}

	for _, number := range subAccounts {
		a.SubAccounts = append(a.SubAccounts, domain.SubAccount{AccountNumber: number})
	}

	accountRepo := accountrepo.NewTxRepoPGS(tx)

	account, err := accountRepo.Save(context.Background(), a)
	if err != nil {
		t.Fatalf("accountRepo.Save(context.Background(), %+v) returned error: %v", a, err)
	}

	return account
}

// SeedAccounts creates count random Accounts each with one random company inside a test transaction.
func SeedAccounts(t *testing.T, tx dbpkg.SQLInterface, count int) []domain.Account {
	t.Helper()

	accounts := make([]domain.Account, count)

	for i := range accounts {
		accounts[i] = SeedAccount(t, tx, []string{randompkg.String(16)}, []string{randompkg.AccountNumber()})
	}

	return accounts
}
