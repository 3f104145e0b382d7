package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// MustOpen connects and pings, retrying with exponential backoff while the
// database comes up. It exits if the database is still unreachable after a minute.
func MustOpen(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect fail")
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute

	ping := func() error {
		err := pool.Ping(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("db ping failed, retrying")
		}
		return err
	}
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		log.Fatal().Err(err).Msg("db ping fail")
	}
	return pool
}
