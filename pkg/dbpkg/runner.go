package dbpkg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
)

// ErrTxNotStarted is returned when committing a runner without an open transaction.
var ErrTxNotStarted = errors.New("transaction is not started")

// Runner is a transactional resource bound to a single pooled connection.
//
// Rollback and Release are safe to call more than once.
//
//go:generate mockgen -source runner.go -destination runner_mock.go -package dbpkg
type Runner interface {
	Start(ctx context.Context) error
	Commit() error
	Rollback() error
	Release() error
	Querier() SQLInterface
}

// Connector acquires Runners.
type Connector interface {
	Connect(ctx context.Context) (Runner, error)
}

// DBConnector acquires Runners from a *sql.DB pool.
type DBConnector struct {
	db *sql.DB
}

// NewConnector returns Connector backed by the given pool.
func NewConnector(db *sql.DB) *DBConnector {
	return &DBConnector{db: db}
}

// Connect reserves a connection from the pool.
func (c *DBConnector) Connect(ctx context.Context) (Runner, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return &connRunner{conn: conn}, nil
}

type connRunner struct {
	conn     *sql.Conn
	tx       *sql.Tx
	released bool
}

func (r *connRunner) Start(ctx context.Context) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	r.tx = tx

	return nil
}

func (r *connRunner) Commit() error {
	if r.tx == nil {
		return ErrTxNotStarted
	}

	return r.tx.Commit()
}

func (r *connRunner) Rollback() error {
	if r.tx == nil {
		return nil
	}

	if err := r.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (r *connRunner) Release() error {
	if r.released {
		return nil
	}

	r.released = true

	return r.conn.Close()
}

func (r *connRunner) Querier() SQLInterface {
	if r.tx != nil {
		return r.tx
	}

	return r.conn
}

// InTx runs fn inside a transaction on a connection acquired from c.
//
// The transaction is committed when fn returns nil and rolled back otherwise,
// including when fn panics. The connection is released on every path.
// The error returned by fn is passed through unchanged.
func InTx(ctx context.Context, c Connector, fn func(q SQLInterface) error) error {
	l := zerolog.Ctx(ctx)

	runner, err := c.Connect(ctx)
	if err != nil {
		l.Error().Err(err).Msg("cannot acquire connection")
		return err
	}

	var started, committed bool

	defer func() {
		if started && !committed {
			if err := runner.Rollback(); err != nil {
				l.Error().Err(err).Msg("rollback failed")
			}
		}

		if err := runner.Release(); err != nil {
			l.Error().Err(err).Msg("release failed")
		}
	}()

	if err := runner.Start(ctx); err != nil {
		l.Error().Err(err).Msg("cannot start transaction")
		return err
	}

	started = true

	if err := fn(runner.Querier()); err != nil {
		return err
	}

	if err := runner.Commit(); err != nil {
		l.Error().Err(err).Msg("commit failed")
		return err
	}

	committed = true

	return nil
}
