package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flastex/go-bpmn/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// New creates a recorder, which persists execution events in a PostgreSQL database.
// The database is migrated, if the schema does not exist yet.
func New(databaseUrl string, customizers ...func(*Options)) (*Recorder, error) {
	if databaseUrl == "" {
		return nil, errors.New("database URL is empty")
	}

	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	pgPoolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %v", err)
	}

	if _, ok := pgPoolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		pgPoolConfig.ConnConfig.RuntimeParams["application_name"] = options.EngineId
	}

	if databaseSchema, ok := pgPoolConfig.ConnConfig.RuntimeParams["search_path"]; ok {
		options.databaseSchema = databaseSchema
	}

	pgPoolCtx, pgPoolCancel := context.WithTimeout(context.Background(), options.Timeout)
	defer pgPoolCancel()

	pgPool, err := pgxpool.NewWithConfig(pgPoolCtx, pgPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %v", err)
	}

	recorder := Recorder{
		options: options,
		pgPool:  pgPool,
	}

	if err := recorder.migrateDatabase(); err != nil {
		recorder.Close()
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	options.Logger.Info("pg recorder created",
		zap.String("engineId", options.EngineId),
		zap.String("databaseSchema", options.databaseSchema),
	)

	return &recorder, nil
}

func NewOptions() Options {
	return Options{
		EngineId: engine.DefaultEngineId,
		Logger:   zap.NewNop(),
		Timeout:  30 * time.Second,

		databaseSchema: "public",
	}
}

type Options struct {
	EngineId string        // ID of the engine, whose events are recorded. Also used as database application name.
	Logger   *zap.Logger   // Logger, used by the recorder.
	Timeout  time.Duration // Time limit for database transactions, utilized when the context has no deadline.

	databaseSchema string // derived from database URL - see runtime parameter "search_path"
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.EngineId) == "" {
		return errors.New("engine ID must not be empty or blank")
	}
	if o.Logger == nil {
		return errors.New("logger is nil")
	}
	if o.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	return nil
}

// Recorder is an [engine.Recorder], which inserts events into the table "event".
// It is safe for concurrent use.
type Recorder struct {
	options Options
	pgPool  *pgxpool.Pool

	closeOnce sync.Once
}

// Close closes all database connections.
func (r *Recorder) Close() {
	r.closeOnce.Do(r.pgPool.Close)
}

// Query queries recorded events of the engine.
func (r *Recorder) Query(ctx context.Context, criteria engine.EventCriteria, options engine.QueryOptions) ([]engine.Event, error) {
	var results []engine.Event
	err := r.withTx(ctx, func(tx pgx.Tx, txCtx context.Context) error {
		var err error
		results, err = eventRepository{tx: tx, txCtx: txCtx, engineId: r.options.EngineId}.Query(criteria, options)
		return err
	})
	return results, err
}

// Record inserts events, using a single transaction.
func (r *Recorder) Record(ctx context.Context, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx pgx.Tx, txCtx context.Context) error {
		return eventRepository{tx: tx, txCtx: txCtx, engineId: r.options.EngineId}.InsertBatch(events)
	})
}

func (r *Recorder) migrateDatabase() error {
	return r.withTx(context.Background(), func(tx pgx.Tx, txCtx context.Context) error {
		return migrateDatabase(tx, txCtx, r.options.databaseSchema)
	})
}

// withTx executes a function within a transaction, which is committed if the function succeeds.
func (r *Recorder) withTx(ctx context.Context, f func(pgx.Tx, context.Context) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.Timeout)
		defer cancel()
	}

	tx, err := r.pgPool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := f(tx, ctx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
