package database

import (
	"database/sql"
	"fmt"
	"time"

	"todoapi/pkg/logger"

	_ "github.com/lib/pq"
)

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Connect opens a PostgreSQL pool for dsn and pings it, retrying a few times
// in case the database is still starting.
func Connect(dsn string) (*sql.DB, error) {
	return connect("postgres", dsn, connectAttempts, retryDelay)
}

func connect(driver, dsn string, attempts int, delay time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", delay, err)
		time.Sleep(delay)
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}
