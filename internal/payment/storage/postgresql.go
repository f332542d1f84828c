package storage

import (
	"database/sql"
	"fmt"

	"ms-hotel/internal/config"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"

	_ "github.com/lib/pq"
)

type PostgreSQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgreSQLStoreWithDB creates a store over an existing connection.
// Used by tests and callers that manage the pool themselves.
func NewPostgreSQLStoreWithDB(db *sql.DB, log *logger.Logger) (*PostgreSQLStore, error) {
	store := &PostgreSQLStore{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize payment attempt tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize payment attempt tables: %w", err)
	}
	return store, nil
}

func NewPostgreSQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*PostgreSQLStore, error) {
	log.LogDatabase("CONNECT", "postgresql", fmt.Sprintf("Connecting to PostgreSQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open PostgreSQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping PostgreSQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgreSQLStore{
		db:  db,
		log: log,
	}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "postgresql", "PostgreSQL connection established and tables initialized")
	return store, nil
}

func (s *PostgreSQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "postgresql", "Creating payment_attempts table if not exists")

	attemptsQuery := `
    CREATE TABLE IF NOT EXISTS payment_attempts (
        attempt_id VARCHAR(64) PRIMARY KEY,
        invoice_id BIGINT NOT NULL,
        amount DECIMAL(10,2) NOT NULL,
        currency VARCHAR(10) NOT NULL,
        status VARCHAR(50) NOT NULL,
        transaction_id VARCHAR(255),
        receipt_url VARCHAR(500),
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `

	if _, err := s.db.Exec(attemptsQuery); err != nil {
		return fmt.Errorf("failed to create payment_attempts table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_payment_attempts_invoice_id ON payment_attempts(invoice_id);",
		"CREATE INDEX IF NOT EXISTS idx_payment_attempts_status ON payment_attempts(status);",
		"CREATE INDEX IF NOT EXISTS idx_payment_attempts_created_at ON payment_attempts(created_at);",
	}

	for _, indexQuery := range indexes {
		if _, err := s.db.Exec(indexQuery); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	s.log.LogDatabase("SUCCESS", "postgresql", "Payment attempt tables and indexes ready")
	return nil
}

func (s *PostgreSQLStore) SaveAttempt(attempt *models.PaymentAttempt) error {
	s.log.LogDatabase("INSERT", "postgresql", fmt.Sprintf("Saving attempt %s", attempt.AttemptID))

	query := `
    INSERT INTO payment_attempts (
        attempt_id, invoice_id, amount, currency, status, transaction_id, receipt_url, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := s.db.Exec(query,
		attempt.AttemptID, attempt.InvoiceID, attempt.Amount, attempt.Currency,
		attempt.Status, attempt.TransactionID, attempt.ReceiptURL, attempt.CreatedAt,
	)

	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save attempt %s: %s", attempt.AttemptID, err.Error()))
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

func (s *PostgreSQLStore) GetAttempt(id string) (*models.PaymentAttempt, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Fetching attempt %s", id))

	query := `
    SELECT attempt_id, invoice_id, amount, currency, status, transaction_id, receipt_url, created_at
    FROM payment_attempts WHERE attempt_id = $1
    `

	attempt := &models.PaymentAttempt{}
	err := s.db.QueryRow(query, id).Scan(
		&attempt.AttemptID, &attempt.InvoiceID, &attempt.Amount, &attempt.Currency,
		&attempt.Status, &attempt.TransactionID, &attempt.ReceiptURL, &attempt.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			s.log.LogDatabase("NOT_FOUND", "postgresql", fmt.Sprintf("Attempt %s not found", id))
			return nil, fmt.Errorf("attempt %s: %w", id, models.ErrNotFound)
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get attempt %s: %s", id, err.Error()))
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

func (s *PostgreSQLStore) UpdateAttempt(attempt *models.PaymentAttempt) error {
	s.log.LogDatabase("UPDATE", "postgresql", fmt.Sprintf("Updating attempt %s", attempt.AttemptID))

	query := `
    UPDATE payment_attempts SET
        status = $1, transaction_id = $2, receipt_url = $3
    WHERE attempt_id = $4
    `

	_, err := s.db.Exec(query,
		attempt.Status, attempt.TransactionID, attempt.ReceiptURL, attempt.AttemptID,
	)

	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update attempt %s: %s", attempt.AttemptID, err.Error()))
		return fmt.Errorf("failed to update attempt: %w", err)
	}
	return nil
}

func (s *PostgreSQLStore) ListAttemptsByInvoice(invoiceID int64, limit, offset int) ([]*models.PaymentAttempt, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Listing attempts for invoice %d (limit: %d, offset: %d)", invoiceID, limit, offset))

	query := `
    SELECT attempt_id, invoice_id, amount, currency, status, transaction_id, receipt_url, created_at
    FROM payment_attempts
    WHERE invoice_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
    `

	rows, err := s.db.Query(query, invoiceID, limit, offset)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list attempts: %s", err.Error()))
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.PaymentAttempt
	for rows.Next() {
		attempt := &models.PaymentAttempt{}
		err := rows.Scan(
			&attempt.AttemptID, &attempt.InvoiceID, &attempt.Amount, &attempt.Currency,
			&attempt.Status, &attempt.TransactionID, &attempt.ReceiptURL, &attempt.CreatedAt,
		)
		if err != nil {
			s.log.Error("DATABASE", fmt.Sprintf("Failed to scan attempt row: %s", err.Error()))
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err = rows.Err(); err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Row iteration error: %s", err.Error()))
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return attempts, nil
}

func (s *PostgreSQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "postgresql", "Closing PostgreSQL connection")
	return s.db.Close()
}

func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}
