package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ store.Store = (*Store)(nil)

func (s *Store) UpsertPendingCustomer(ctx context.Context, c domain.PendingCustomer) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Last intake wins: a re-submitted form replaces the earlier answers.
	query := `
		INSERT INTO pending_customers (customer_id, first_name, last_name, phone, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (customer_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			phone      = EXCLUDED.phone,
			created_at = now()`

	_, err := s.pool.Exec(ctx, query, c.CustomerID, c.FirstName, c.LastName, c.Phone)
	return err
}

func (s *Store) GetPendingCustomer(ctx context.Context, customerID string) (*domain.PendingCustomer, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT customer_id, first_name, last_name, phone, created_at
		FROM pending_customers WHERE customer_id = $1`

	var c domain.PendingCustomer
	err := s.pool.QueryRow(ctx, query, customerID).Scan(
		&c.CustomerID, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeletePendingCustomer(ctx context.Context, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM pending_customers WHERE customer_id = $1`, customerID)
	return err
}

func (s *Store) MarkTransaction(ctx context.Context, uniqueID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Single-statement conditional create: zero rows affected means a
	// concurrent or earlier delivery already owns this transaction.
	query := `
		INSERT INTO processed_transactions (transaction_id, created_at)
		VALUES ($1, now())
		ON CONFLICT (transaction_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, uniqueID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 0, nil
}

func (s *Store) ReleaseTransaction(ctx context.Context, uniqueID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM processed_transactions WHERE transaction_id = $1`, uniqueID)
	return err
}

func (s *Store) UpsertTicket(ctx context.Context, t domain.PinChangeTicket) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO pin_change_tickets (phone, guest_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (phone) DO UPDATE SET
			guest_id   = EXCLUDED.guest_id,
			created_at = now()`

	_, err := s.pool.Exec(ctx, query, t.Phone, t.GuestID)
	return err
}

func (s *Store) GetTicket(ctx context.Context, phoneNumber string) (*domain.PinChangeTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT phone, guest_id, created_at FROM pin_change_tickets WHERE phone = $1`

	var t domain.PinChangeTicket
	err := s.pool.QueryRow(ctx, query, phoneNumber).Scan(&t.Phone, &t.GuestID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteTicket(ctx context.Context, phoneNumber string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM pin_change_tickets WHERE phone = $1`, phoneNumber)
	return err
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var deleted int64
	for _, table := range []string{"pending_customers", "pin_change_tickets", "processed_transactions"} {
		tag, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE created_at < $1`, cutoff)
		if err != nil {
			return 0, err
		}
		deleted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}
