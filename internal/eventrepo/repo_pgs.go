// Package eventrepo manages repository layer of domain events.
package eventrepo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/pkg/dbpkg"
	"github.com/go-petr/accounts-api/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates event repository layer logic.
type RepoPGS struct {
	db        dbpkg.SQLInterface
	connector dbpkg.Connector
}

// NewTxRepoPGS returns event RepoPGS bound to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns event RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:        db,
		connector: dbpkg.NewConnector(db),
	}
}

const createQuery = `
INSERT INTO
    events (name, payload)
VALUES
    ($1, $2)
RETURNING id, name, payload, created_at
`

// Create stores the event with the given name and JSON encoded payload.
func (r *RepoPGS) Create(ctx context.Context, name string, payload any) (domain.Event, error) {
	l := zerolog.Ctx(ctx)

	var e domain.Event

	data, err := json.Marshal(payload)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %q, %+v)", name, payload)
		return e, errorspkg.ErrInternal
	}

	var stored []byte

	err = r.db.QueryRowContext(ctx, createQuery, name, string(data)).Scan(
		&e.ID,
		&e.Name,
		&stored,
		&e.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %q, %s)", name, data)
		return e, errorspkg.ErrInternal
	}

	e.Payload = stored

	return e, nil
}

// CreateTx stores the event inside its own transaction.
//
// The transaction is rolled back and the connection released when the insert fails.
func (r *RepoPGS) CreateTx(ctx context.Context, name string, payload any) (domain.Event, error) {
	if r.connector == nil {
		return r.Create(ctx, name, payload)
	}

	var e domain.Event

	err := dbpkg.InTx(ctx, r.connector, func(q dbpkg.SQLInterface) error {
		var err error
		e, err = NewTxRepoPGS(q).Create(ctx, name, payload)

		return err
	})
	if err != nil {
		return domain.Event{}, err
	}

	return e, nil
}

const getQuery = `
SELECT
	id, name, payload, created_at
FROM events
WHERE id = $1
`

// Get returns the event with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Event, error) {
	l := zerolog.Ctx(ctx)

	var (
		e       domain.Event
		payload []byte
	)

	err := r.db.QueryRowContext(ctx, getQuery, id).Scan(&e.ID, &e.Name, &payload, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return e, domain.ErrEventNotFound
		}

		l.Error().Err(err).Send()

		return e, errorspkg.ErrInternal
	}

	e.Payload = payload

	return e, nil
}
