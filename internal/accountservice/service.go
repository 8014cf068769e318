// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	List(ctx context.Context, limit, offset int32) ([]domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	FindCompanyByName(ctx context.Context, name string) (domain.Company, error)
	FindSubAccountByNumber(ctx context.Context, number string) (domain.SubAccount, error)
	Preload(ctx context.Context, id int64, arg domain.UpdateAccountParams) (domain.Account, error)
	Save(ctx context.Context, a domain.Account) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
}

// EventRepo stores domain events transactionally.
type EventRepo interface {
	CreateTx(ctx context.Context, name string, payload any) (domain.Event, error)
}

// Publisher fans committed events out to other subsystems.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// Service facilitates account service layer logic.
type Service struct {
	repo      Repo
	eventRepo EventRepo
	publisher Publisher
}

// New returns account service struct to manage account bussines logic.
//
// The publisher may be nil, in which case events are only stored.
func New(ar Repo, er EventRepo, p Publisher) *Service {
	return &Service{
		repo:      ar,
		eventRepo: er,
		publisher: p,
	}
}

// List returns a page of accounts.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Create resolves the referenced companies and sub-accounts and stores the new account.
func (s *Service) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	companies, subAccounts, err := s.resolve(ctx, arg.Companies, arg.SubAccounts)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		Name:        arg.Name,
		Document:    arg.Document,
		Email:       arg.Email,
		Companies:   companies,
		SubAccounts: subAccounts,
	}

	if arg.Address != nil {
		addr := arg.Address.Address()
		account.Address = &addr
	}

	return s.repo.Save(ctx, account)
}

// Update merges the present fields of arg onto the account with the given id.
//
// Present company and sub-account lists replace the current associations.
func (s *Service) Update(ctx context.Context, id int64, arg domain.UpdateAccountParams) (domain.Account, error) {
	account, err := s.repo.Preload(ctx, id, arg)
	if err != nil {
		return domain.Account{}, err
	}

	companies, subAccounts, err := s.resolve(ctx, arg.Companies, arg.SubAccounts)
	if err != nil {
		return domain.Account{}, err
	}

	if arg.Companies != nil {
		account.Companies = companies
	}

	if arg.SubAccounts != nil {
		account.SubAccounts = subAccounts
	}

	return s.repo.Save(ctx, account)
}

// Remove deletes the account with the given id and returns what was deleted.
func (s *Service) Remove(ctx context.Context, id int64) (domain.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// Cashout records a cashout event paid by the account with the given id.
func (s *Service) Cashout(ctx context.Context, id int64, ft domain.FinancialTransaction) (domain.Event, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	return s.EmitFinancialTransactionEvent(ctx, account, ft)
}

// EmitFinancialTransactionEvent stores a cashout event for the account in its own transaction
// and then publishes it. A publish failure is logged, the stored event stays.
func (s *Service) EmitFinancialTransactionEvent(
	ctx context.Context, account domain.Account, ft domain.FinancialTransaction,
) (domain.Event, error) {
	l := zerolog.Ctx(ctx)

	payload := domain.CashoutPayload{
		AccountPayer:         account.ID,
		FinancialTransaction: ft,
	}

	event, err := s.eventRepo.CreateTx(ctx, domain.EventCashout, payload)
	if err != nil {
		return domain.Event{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event.Name, event); err != nil {
			l.Warn().Err(err).Int64("event_id", event.ID).Msg("cannot publish event")
		}
	}

	return event, nil
}

// resolve finds or creates every distinct company name and sub-account number
// concurrently. Results keep the order of first occurrence.
func (s *Service) resolve(ctx context.Context, names, numbers []string) ([]domain.Company, []domain.SubAccount, error) {
	names = distinct(names)
	numbers = distinct(numbers)

	companies := make([]domain.Company, len(names))
	subAccounts := make([]domain.SubAccount, len(numbers))

	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			c, err := s.resolveCompany(gctx, name)
			companies[i] = c

			return err
		})
	}

	for i, number := range numbers {
		i, number := i, number
		g.Go(func() error {
			sa, err := s.resolveSubAccount(gctx, number)
			subAccounts[i] = sa

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return companies, subAccounts, nil
}

// resolveCompany returns the stored company or an unsaved one with the given name.
func (s *Service) resolveCompany(ctx context.Context, name string) (domain.Company, error) {
	c, err := s.repo.FindCompanyByName(ctx, name)
	if err == nil {
		return c, nil
	}

	if !errors.Is(err, domain.ErrCompanyNotFound) {
		return domain.Company{}, err
	}

	return domain.Company{Name: name}, nil
}

// resolveSubAccount returns the stored sub-account or an unsaved one with the given number.
func (s *Service) resolveSubAccount(ctx context.Context, number string) (domain.SubAccount, error) {
	sa, err := s.repo.FindSubAccountByNumber(ctx, number)
	if err == nil {
		return sa, nil
	}

	if !errors.Is(err, domain.ErrSubAccountNotFound) {
		return domain.SubAccount{}, err
	}

	return domain.SubAccount{AccountNumber: number}, nil
}

// distinct drops empty and repeated keys. A nil input stays nil.
func distinct(keys []string) []string {
	if keys == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))

	for _, k := range keys {
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		out = append(out, k)
	}

	return out
}
