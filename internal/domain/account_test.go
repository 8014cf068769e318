package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("get: %w", NotFoundError{ID: 42})

	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("errors.Is(%v, ErrAccountNotFound)=false, want true", err)
	}

	if got, want := (NotFoundError{ID: 42}).Error(), "account #42 not found"; got != want {
		t.Errorf("Error()=%q, want %q", got, want)
	}
}

func TestAccountApply(t *testing.T) {
	name := "New Name"

	base := func() Account {
		return Account{
			ID:          7,
			Name:        "Old Name",
			Document:    "12345678901",
			Email:       "old@email.com",
			Companies:   []Company{{ID: 1, Name: "Acme"}},
			SubAccounts: []SubAccount{{ID: 2, AccountNumber: "0001"}},
			Address:     &Address{ID: 3, Street: "Old street", City: "Recife"},
		}
	}

	testCases := []struct {
		name  string
		input UpdateAccountParams
		want  func() Account
	}{
		{
			name:  "NothingPresent",
			input: UpdateAccountParams{},
			want:  base,
		},
		{
			name:  "NameOnly",
			input: UpdateAccountParams{Name: &name},
			want: func() Account {
				a := base()
				a.Name = name
				return a
			},
		},
		{
			name: "AddressKeepsID",
			input: UpdateAccountParams{
				Address: &AddressParams{Street: "New street", City: "Olinda"},
			},
			want: func() Account {
				a := base()
				a.Address = &Address{ID: 3, Street: "New street", City: "Olinda"}
				return a
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got := base()
			got.Apply(tc.input)

			if diff := cmp.Diff(tc.want(), got); diff != "" {
				t.Errorf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("AddressOnAccountWithoutAddress", func(t *testing.T) {
		got := Account{ID: 1}
		got.Apply(UpdateAccountParams{Address: &AddressParams{Street: "Rua A"}})

		want := &Address{Street: "Rua A"}
		if diff := cmp.Diff(want, got.Address); diff != "" {
			t.Errorf("Address mismatch (-want +got):\n%s", diff)
		}
	})
}
