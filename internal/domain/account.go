// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrCompanyNotFound indicates that no company has the given name.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrSubAccountNotFound indicates that no sub-account has the given account number.
	ErrSubAccountNotFound = errors.New("sub-account not found")
	// ErrDocumentAlreadyExists indicates that another account already uses the document.
	ErrDocumentAlreadyExists = errors.New("account document already exists")
)

// NotFoundError reports a missing account. It matches ErrAccountNotFound.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("account #%d not found", e.ID)
}

// Is reports whether target is ErrAccountNotFound.
func (e NotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// Account holds a financial account holder record together with its related rows.
type Account struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Document    string       `json:"document"`
	Email       string       `json:"email"`
	Companies   []Company    `json:"companies"`
	SubAccounts []SubAccount `json:"sub_accounts"`
	Address     *Address     `json:"address,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Company is an organization associated with accounts. Name is unique.
//
// A zero ID means the company is not persisted yet.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SubAccount is a secondary account identified by its unique account number.
//
// A zero ID means the sub-account is not persisted yet.
type SubAccount struct {
	ID            int64     `json:"id"`
	AccountNumber string    `json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// Address is the postal address owned by exactly one account.
type Address struct {
	ID         int64  `json:"id"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	Country    string `json:"country"`
}

// AddressParams is the input data of an address.
type AddressParams struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	Country    string `json:"country"`
}

// Address returns an unsaved Address built from p.
func (p AddressParams) Address() Address {
	return Address{
		Street:     p.Street,
		Number:     p.Number,
		Complement: p.Complement,
		District:   p.District,
		City:       p.City,
		State:      p.State,
		ZipCode:    p.ZipCode,
		Country:    p.Country,
	}
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	Name        string
	Document    string
	Email       string
	Companies   []string
	SubAccounts []string
	Address     *AddressParams
}

// UpdateAccountParams is the input data to update an account.
//
// Nil fields are left unchanged. A non-nil empty slice clears the associations.
type UpdateAccountParams struct {
	Name        *string
	Document    *string
	Email       *string
	Companies   []string
	SubAccounts []string
	Address     *AddressParams
}

// Apply merges the present base and address fields of arg onto a.
// The address keeps its id so the owned row is updated in place.
func (a *Account) Apply(arg UpdateAccountParams) {
	if arg.Name != nil {
		a.Name = *arg.Name
	}

	if arg.Document != nil {
		a.Document = *arg.Document
	}

	if arg.Email != nil {
		a.Email = *arg.Email
	}

	if arg.Address != nil {
		addr := arg.Address.Address()
		if a.Address != nil {
			addr.ID = a.Address.ID
		}

		a.Address = &addr
	}
}
