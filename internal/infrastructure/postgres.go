package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Users Table
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(255),
			role VARCHAR(20) DEFAULT 'user',
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create app_users table: %w", err)
	}

	// Chat event rows written by the n8n ingestion flow. The message
	// column is a free-form JSON bag; its shape is not enforced here.
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS n8n_chat_histories (
			id SERIAL PRIMARY KEY,
			session_id VARCHAR(255) NOT NULL,
			message JSONB NOT NULL,
			status VARCHAR(20),
			app_state VARCHAR(50),
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create n8n_chat_histories table: %w", err)
	}

	// Simple dirty migrations for tables created by older deployments
	p.Pool.Exec(ctx, "ALTER TABLE n8n_chat_histories ADD COLUMN IF NOT EXISTS status VARCHAR(20);")
	p.Pool.Exec(ctx, "ALTER TABLE n8n_chat_histories ADD COLUMN IF NOT EXISTS app_state VARCHAR(50);")
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_chat_histories_session ON n8n_chat_histories(session_id);")

	// Generated catalog artifacts, one row per generated PDF
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pdf_catalog_metadata (
			id SERIAL PRIMARY KEY,
			user_id UUID REFERENCES app_users(id),
			link TEXT,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create pdf_catalog_metadata table: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
