package directory

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

// SQLiteDirectory implements UserDirectory over a local SQLite database.
type SQLiteDirectory struct {
	db *sql.DB
}

func NewSQLiteDirectory(path string) (*SQLiteDirectory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	d := &SQLiteDirectory{
		db: db,
	}
	if err := d.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return d, nil
}

func (d *SQLiteDirectory) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			contact TEXT NOT NULL,
			pincode TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_users_pincode ON users(pincode);
  	`

	_, err := d.db.Exec(schema)
	return err
}

func (d *SQLiteDirectory) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, contact, pincode FROM users`)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	var users []models.UserRecord
	for rows.Next() {
		var u models.UserRecord
		var pincode sql.NullString
		if err := rows.Scan(&u.ID, &u.Contact, &pincode); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		if pincode.Valid {
			u.Pincode = models.PostalCode(pincode.String)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// AddUser inserts or replaces a directory entry. Used by seeding and tests;
// the production directory is populated by the registration service.
func (d *SQLiteDirectory) AddUser(ctx context.Context, u models.UserRecord) error {
	var pincode any
	if u.Pincode != "" {
		pincode = string(u.Pincode)
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (id, contact, pincode) VALUES (?, ?, ?)`,
		u.ID, u.Contact, pincode,
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (d *SQLiteDirectory) Close() error {
	return d.db.Close()
}
