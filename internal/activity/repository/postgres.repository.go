package repository

import (
	"database/sql"
	"fmt"

	"todoapi/internal/activity/model"
	"todoapi/pkg/logger"
)

const createActivitiesTable = `
	CREATE TABLE IF NOT EXISTS activities (
		position    INTEGER PRIMARY KEY,
		id          INTEGER NOT NULL,
		title       TEXT,
		description TEXT,
		due_date    TEXT,
		done        BOOLEAN NOT NULL DEFAULT FALSE
	)`

// PostgresRepository stores the activity list in the activities table. The
// position column preserves list order across Load/Save.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema() error {
	if _, err := r.DB.Exec(createActivitiesTable); err != nil {
		logger.Sugar.Errorf("Failed to create activities table: %v", err)
		return fmt.Errorf("%w: create table: %v", model.ErrFileAccess, err)
	}
	return nil
}

func (r *PostgresRepository) Load() ([]model.Activity, error) {
	rows, err := r.DB.Query("SELECT id, title, description, due_date, done FROM activities ORDER BY position ASC")
	if err != nil {
		logger.Sugar.Errorf("Failed to load activities: %v", err)
		return nil, fmt.Errorf("%w: query: %v", model.ErrFileAccess, err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		var title, description, dueDate sql.NullString
		if err := rows.Scan(&a.ID, &title, &description, &dueDate, &a.Done); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", model.ErrParse, err)
		}
		a.Title = nullToPtr(title)
		a.Description = nullToPtr(description)
		a.DueDate = nullToPtr(dueDate)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", model.ErrFileAccess, err)
	}
	return activities, nil
}

// Save replaces the table content inside one transaction.
func (r *PostgresRepository) Save(activities []model.Activity) error {
	tx, err := r.DB.Begin()
	if err != nil {
		logger.Sugar.Errorf("Failed to begin save transaction: %v", err)
		return fmt.Errorf("%w: begin: %v", model.ErrFileAccess, err)
	}

	if _, err := tx.Exec("DELETE FROM activities"); err != nil {
		_ = tx.Rollback()
		logger.Sugar.Errorf("Failed to clear activities: %v", err)
		return fmt.Errorf("%w: clear: %v", model.ErrFileAccess, err)
	}
	for i, a := range activities {
		_, err := tx.Exec(`INSERT INTO activities (position, id, title, description, due_date, done) VALUES ($1, $2, $3, $4, $5, $6)`,
			i, a.ID, ptrToNull(a.Title), ptrToNull(a.Description), ptrToNull(a.DueDate), a.Done)
		if err != nil {
			_ = tx.Rollback()
			logger.Sugar.Errorf("Failed to insert activity %d: %v", a.ID, err)
			return fmt.Errorf("%w: insert %d: %v", model.ErrFileAccess, a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit activities: %v", err)
		return fmt.Errorf("%w: commit: %v", model.ErrFileAccess, err)
	}
	return nil
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func ptrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
