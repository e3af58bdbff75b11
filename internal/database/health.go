package database

import (
	"context"
	"errors"
)

// Health pings every connected store and reports "ok" or the error per store.
// Stores that were never connected are reported as "not connected".
func Health(ctx context.Context) (map[string]string, error) {
	status := make(map[string]string, 3)
	var errs []error

	check := func(name string, connected bool, ping func() error) {
		if !connected {
			status[name] = "not connected"
			errs = append(errs, errors.New(name+" not connected"))
			return
		}
		if err := ping(); err != nil {
			status[name] = err.Error()
			errs = append(errs, err)
			return
		}
		status[name] = "ok"
	}

	check("postgres", PostgresDB != nil, func() error { return PostgresDB.PingContext(ctx) })
	check("redis", RedisClient != nil, func() error { return RedisClient.Ping(ctx).Err() })
	check("mongodb", Client != nil, func() error { return Client.Ping(ctx, nil) })

	return status, errors.Join(errs...)
}
