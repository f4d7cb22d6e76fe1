// Package seed populates a local Nexora demo database with a fixed,
// internally consistent graph of fixture entities. Every upsert is keyed
// by a domain natural key so re-running the pipeline is safe.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// Store wraps the SQL database connection used by the seeder.
type Store struct {
	*sql.DB
	path string
}

// NewStore opens the seed database and initializes the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{
		DB:   sqlDB,
		path: path,
	}

	if err := s.configure(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := s.createSchema(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// configure sets up database pragmas for optimal performance.
func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := s.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (s *Store) createSchema() error {
	if err := s.createCoreTables(); err != nil {
		return err
	}
	if err := s.createDeliveryTables(); err != nil {
		return err
	}
	if err := s.createSalesTables(); err != nil {
		return err
	}
	if err := s.createIssueTables(); err != nil {
		return err
	}
	return s.createMarketingTables()
}

func (s *Store) createCoreTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS tenants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		name TEXT NOT NULL UNIQUE,
		plan TEXT NOT NULL DEFAULT 'trial',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS tenant_members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		role TEXT NOT NULL DEFAULT 'member',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, user_id)
	);
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		name TEXT NOT NULL,
		industry TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, name)
	);
	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		title TEXT,
		phone TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(client_id, email)
	);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

func (s *Store) createDeliveryTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		budget REAL DEFAULT 0,
		manager_id INTEGER REFERENCES users(id),
		starts_on DATE,
		ends_on DATE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(client_id, name)
	);
	CREATE TABLE IF NOT EXISTS milestones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		name TEXT NOT NULL,
		due_on DATE,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(project_id, name)
	);
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		milestone_id INTEGER REFERENCES milestones(id),
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		assignee_id INTEGER REFERENCES users(id),
		estimate_hours REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(project_id, title)
	);
	CREATE TABLE IF NOT EXISTS meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		title TEXT NOT NULL,
		scheduled_at DATETIME,
		organizer_id INTEGER REFERENCES users(id),
		summary TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(project_id, title)
	);
	CREATE TABLE IF NOT EXISTS risks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		title TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'MEDIUM',
		likelihood TEXT NOT NULL DEFAULT 'possible',
		mitigation TEXT,
		owner_id INTEGER REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(project_id, title)
	);
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		title TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'note',
		author_id INTEGER REFERENCES users(id),
		body TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(project_id, title)
	);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

func (s *Store) createSalesTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS crm_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		name TEXT NOT NULL,
		website TEXT,
		segment TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, name)
	);
	CREATE TABLE IF NOT EXISTS crm_contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES crm_accounts(id),
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		title TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account_id, email)
	);
	CREATE TABLE IF NOT EXISTS pipeline_stages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		name TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		win_probability REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, name)
	);
	CREATE TABLE IF NOT EXISTS opportunities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES crm_accounts(id),
		stage_id INTEGER NOT NULL REFERENCES pipeline_stages(id),
		name TEXT NOT NULL,
		amount REAL DEFAULT 0,
		owner_id INTEGER REFERENCES users(id),
		expected_close DATE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account_id, name)
	);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

func (s *Store) createIssueTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS issue_labels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#808080',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, name)
	);
	CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		label_id INTEGER REFERENCES issue_labels(id),
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		severity TEXT NOT NULL DEFAULT 'MEDIUM',
		reporter_id INTEGER REFERENCES users(id),
		assignee_id INTEGER REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(project_id, title)
	);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

func (s *Store) createMarketingTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		source TEXT,
		status TEXT NOT NULL DEFAULT 'new',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, email)
	);
	CREATE TABLE IF NOT EXISTS brand_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		name TEXT NOT NULL,
		voice TEXT,
		audience TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, name)
	);
	CREATE TABLE IF NOT EXISTS campaigns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		brand_profile_id INTEGER REFERENCES brand_profiles(id),
		name TEXT NOT NULL,
		channel TEXT NOT NULL DEFAULT 'email',
		status TEXT NOT NULL DEFAULT 'draft',
		budget REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, name)
	);
	CREATE TABLE IF NOT EXISTS content_pieces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL REFERENCES tenants(id),
		campaign_id INTEGER REFERENCES campaigns(id),
		title TEXT NOT NULL,
		format TEXT NOT NULL DEFAULT 'post',
		status TEXT NOT NULL DEFAULT 'draft',
		author_id INTEGER REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, title)
	);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	_, _ = s.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return s.DB.Close()
}
