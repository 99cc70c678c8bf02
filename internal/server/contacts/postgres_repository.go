package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/dmitrijs2005/contacthub/internal/dbx"
)

// PostgresRepository stores contacts in two tables: contacts plus an optional
// addresses row keyed by contact id. Writes touching both go through a
// transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contactColumns = `
	c.id, c.user_id, c.name, c.surname, c.email, c.phone, c.birthday,
	c.created_at, c.updated_at,
	a.contact_id, a.country, a.index, a.city, a.street, a.house, a.apartment`

const contactFrom = ` FROM contacts c LEFT JOIN addresses a ON a.contact_id = c.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*Contact, error) {
	c := &Contact{}
	var addrID, country, index, city, street, house, apartment sql.NullString

	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Surname, &c.Email, &c.Phone,
		&c.Birthday, &c.CreatedAt, &c.UpdatedAt,
		&addrID, &country, &index, &city, &street, &house, &apartment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if addrID.Valid {
		c.Address = &Address{
			Country:   country.String,
			Index:     index.String,
			City:      city.String,
			Street:    street.String,
			House:     house.String,
			Apartment: apartment.String,
		}
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, contact *Contact) (*Contact, error) {
	contact.ID = uuid.NewString()

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO contacts (id, user_id, name, surname, email, phone, birthday)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query,
			contact.ID, contact.UserID, contact.Name, contact.Surname,
			contact.Email, contact.Phone, contact.Birthday).
			Scan(&contact.CreatedAt, &contact.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		if contact.Address != nil {
			return insertAddress(ctx, tx, contact.ID, contact.Address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*Contact, error) {
	query := `SELECT` + contactColumns + contactFrom + ` WHERE c.user_id = $1 AND c.id = $2`
	return scanContact(r.db.QueryRowContext(ctx, query, userID, id))
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter ListFilter) ([]*Contact, error) {
	query := `SELECT` + contactColumns + contactFrom + ` WHERE c.user_id = $1`
	args := []any{userID}

	// optional ILIKE filters, numbered after the fixed args
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+value+"%")
		query += fmt.Sprintf(" AND %s ILIKE $%d", column, len(args))
	}
	add("c.name", filter.Name)
	add("c.surname", filter.Surname)
	add("c.email", filter.Email)

	query += " ORDER BY c.created_at, c.id"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.queryContacts(ctx, query, args...)
}

func (r *PostgresRepository) Update(ctx context.Context, contact *Contact) (*Contact, error) {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			UPDATE contacts
			SET name = $3, surname = $4, email = $5, phone = $6, birthday = $7,
			    updated_at = now()
			WHERE user_id = $1 AND id = $2
			RETURNING created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query,
			contact.UserID, contact.ID, contact.Name, contact.Surname,
			contact.Email, contact.Phone, contact.Birthday).
			Scan(&contact.CreatedAt, &contact.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM addresses WHERE contact_id = $1`, contact.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if contact.Address != nil {
			return insertAddress(ctx, tx, contact.ID, contact.Address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	// addresses go with the contact via ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpcomingBirthdays(ctx context.Context, userID string, days int) ([]*Contact, error) {
	today := time.Now().UTC()
	until := today.AddDate(0, 0, days)

	query := `SELECT` + contactColumns + contactFrom + `
		WHERE c.user_id = $1 AND (
			(EXTRACT(MONTH FROM c.birthday) = $2 AND EXTRACT(DAY FROM c.birthday) >= $3)
			OR
			(EXTRACT(MONTH FROM c.birthday) = $4 AND EXTRACT(DAY FROM c.birthday) <= $5)
		)
		ORDER BY EXTRACT(MONTH FROM c.birthday), EXTRACT(DAY FROM c.birthday)`

	return r.queryContacts(ctx, query, userID,
		int(today.Month()), today.Day(), int(until.Month()), until.Day())
}

func (r *PostgresRepository) queryContacts(ctx context.Context, query string, args ...any) ([]*Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func insertAddress(ctx context.Context, tx dbx.DBTX, contactID string, a *Address) error {
	query := `
		INSERT INTO addresses (contact_id, country, index, city, street, house, apartment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		contactID, a.Country, a.Index, a.City, a.Street, a.House, a.Apartment)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
