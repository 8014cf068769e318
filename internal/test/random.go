package test

import (
	"time"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/pkg/currencypkg"
	"github.com/go-petr/accounts-api/pkg/randompkg"
)

// RandomAccount returns random persisted-looking account with one company and one sub-account.
func RandomAccount() domain.Account {
	now := time.Now().Truncate(time.Second).UTC()
	addr := RandomAddress().Address()
	addr.ID = randompkg.IntBetween(1, 100)

	return domain.Account{
		ID:       randompkg.IntBetween(1, 100),
		Name:     randompkg.Name(),
		Document: randompkg.Document(),
		Email:    randompkg.Email(),
		Companies: []domain.Company{
			{ID: randompkg.IntBetween(1, 100), Name: randompkg.Name(), CreatedAt: now},
		},
		SubAccounts: []domain.SubAccount{
			{ID: randompkg.IntBetween(1, 100), AccountNumber: randompkg.AccountNumber(), CreatedAt: now},
		},
		Address:   &addr,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RandomAddress returns random address input.
func RandomAddress() domain.AddressParams {
	return domain.AddressParams{
		Street:     randompkg.Name(),
		Number:     randompkg.Digits(3),
		Complement: "apt " + randompkg.Digits(2),
		District:   randompkg.Name(),
		City:       randompkg.Name(),
		State:      randompkg.String(2),
		ZipCode:    randompkg.Digits(8),
		Country:    "BR",
	}
}

// RandomFinancialTransaction returns random cashout data.
func RandomFinancialTransaction() domain.FinancialTransaction {
	return domain.FinancialTransaction{
		Amount:      randompkg.MoneyAmountBetween(1, 1000),
		Currency:    currencypkg.BRL,
		Description: randompkg.String(12),
	}
}
