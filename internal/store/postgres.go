package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const memberColumns = `user_id, email, name, subscription_type, subscription_status, start_date, end_date, created_at, updated_at`

const attendanceColumns = `id, user_id, recorded_at, action, check_in_time, check_out_time, user_name, user_email`

func Open(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Migrate(db *sqlx.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+absPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// PostgresGateway keeps members and attendance in two relational tables.
type PostgresGateway struct {
	db *sqlx.DB
}

func NewPostgresGateway(db *sqlx.DB) *PostgresGateway {
	return &PostgresGateway{db: db}
}

func (g *PostgresGateway) GetMember(ctx context.Context, userID string) (*Member, error) {
	m := &Member{}
	err := g.db.GetContext(ctx, m, `
		SELECT `+memberColumns+`
		FROM members
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", userID, err)
	}
	return m, nil
}

func (g *PostgresGateway) PutMember(ctx context.Context, m *Member) error {
	_, err := g.db.NamedExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES (:user_id, :email, :name, :subscription_type, :subscription_status, :start_date, :end_date, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			subscription_type = EXCLUDED.subscription_type,
			subscription_status = EXCLUDED.subscription_status,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`, m)
	if err != nil {
		return fmt.Errorf("put member %s: %w", m.UserID, err)
	}
	return nil
}

func (g *PostgresGateway) UpdateMember(ctx context.Context, userID string, upd MemberUpdate) (*Member, error) {
	upd = upd.withTimestamp()

	m := &Member{}
	err := g.db.QueryRowxContext(ctx, `
		UPDATE members
		SET subscription_type = COALESCE($2, subscription_type),
		    subscription_status = COALESCE($3, subscription_status),
		    end_date = COALESCE($4, end_date),
		    updated_at = $5
		WHERE user_id = $1
		RETURNING `+memberColumns,
		userID, upd.SubscriptionType, upd.SubscriptionStatus, upd.EndDate, upd.UpdatedAt,
	).StructScan(m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update member %s: %w", userID, err)
	}
	return m, nil
}

func (g *PostgresGateway) PutAttendance(ctx context.Context, rec *AttendanceRecord) error {
	_, err := g.db.NamedExecContext(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (:id, :user_id, :recorded_at, :action, :check_in_time, :check_out_time, :user_name, :user_email)
	`, rec)
	if err != nil {
		return fmt.Errorf("put attendance %s: %w", rec.ID, err)
	}
	return nil
}

func (g *PostgresGateway) QueryAttendance(ctx context.Context, userID string, limit int) ([]AttendanceRecord, error) {
	records := []AttendanceRecord{}
	err := g.db.SelectContext(ctx, &records, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query attendance for %s: %w", userID, err)
	}
	return records, nil
}

func (g *PostgresGateway) ScanActiveMembers(ctx context.Context) ([]Member, error) {
	members := []Member{}
	err := g.db.SelectContext(ctx, &members, `
		SELECT `+memberColumns+`
		FROM members
		WHERE subscription_status = $1
	`, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("scan active members: %w", err)
	}
	return members, nil
}
