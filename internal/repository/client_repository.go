package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/model"
)

const clientColumns = `id, name, email, phone, company, created_at`

// ClientRepository is the postgres implementation
type ClientRepository struct {
	DB *sql.DB
}

func scanClient(row rowScanner) (*model.Client, error) {
	var c model.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List fetches all clients, newest first
func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, logStoreError("clients.list", err)
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// GetByID fetches a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found
		}
		return nil, logStoreError("clients.get", err)
	}
	return c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO clients (id, name, email, phone, company, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Company, c.CreatedAt).Scan(&c.ID)
	return logStoreError("clients.create", err)
}

func (r *ClientRepository) Update(ctx context.Context, id string, patch model.ClientPatch) (*model.Client, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewNotFound("client", id)
	}
	patch.Apply(c)

	query := `
		UPDATE clients SET name=$1, email=$2, phone=$3, company=$4
		WHERE id=$5
		RETURNING ` + clientColumns
	updated, err := scanClient(r.DB.QueryRowContext(ctx, query, c.Name, c.Email, c.Phone, c.Company, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("client", id)
		}
		return nil, logStoreError("clients.update", err)
	}
	return updated, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) (*model.Client, error) {
	c, err := scanClient(r.DB.QueryRowContext(ctx, `DELETE FROM clients WHERE id=$1 RETURNING `+clientColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("client", id)
		}
		return nil, logStoreError("clients.delete", err)
	}
	return c, nil
}

var _ ClientRepositoryInterface = (*ClientRepository)(nil)
