package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/entityfactory/internal/database"
	"github.com/forgo/entityfactory/internal/model"
	"github.com/google/uuid"
)

// ErrMissingParent is returned when a child is saved before its parent.
var ErrMissingParent = errors.New("parent must be saved first")

// Schema creates the tables used by the SQL repositories. The statements are
// valid for both sqlite and postgres.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS basic_entity (
		id TEXT PRIMARY KEY,
		my_long_attribute BIGINT NOT NULL,
		my_string_attribute TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parent_entity (
		id TEXT PRIMARY KEY,
		string_attribute TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS child_entity (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL REFERENCES parent_entity(id)
	)`,
	`CREATE TABLE IF NOT EXISTS entity_with_unique_attributes (
		id TEXT PRIMARY KEY,
		unique_string TEXT UNIQUE,
		unique_long BIGINT UNIQUE,
		repeatable_string TEXT,
		repeatable_long BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS app_user (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		address TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		age INTEGER NOT NULL,
		phone_number TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_on TIMESTAMP NOT NULL
	)`,
}

// record is satisfied by *E for every model entity.
type record[E any] interface {
	*E
	model.Record
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLRepository saves and reads one entity type in one table.
type SQLRepository[E any, P record[E]] struct {
	db      *database.SQLDB
	table   string
	columns []string
	values  func(*E) []any
	scan    func(scanner) (*E, error)
	check   func(*E) error
}

// Save inserts entity, assigning an ID when it has none. It runs on the
// transaction carried by ctx when there is one. An assigned ID is written
// back only after the insert, and cleared again if that transaction rolls
// back.
func (r *SQLRepository[E, P]) Save(ctx context.Context, entity *E) (*E, error) {
	if r.check != nil {
		if err := r.check(entity); err != nil {
			return nil, err
		}
	}

	rec := P(entity)
	id := rec.GetID()
	assigned := id == ""
	if assigned {
		id = uuid.NewString()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.columns)+1), ", ")
	query := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (%s)",
		r.table, strings.Join(r.columns, ", "), placeholders)

	args := append([]any{id}, r.values(entity)...)
	if _, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return nil, database.ClassifySQLError(err)
	}
	if assigned {
		rec.SetID(id)
		database.OnRollback(ctx, func() { rec.SetID("") })
	}
	return entity, nil
}

// GetByID returns the entity with the given ID.
func (r *SQLRepository[E, P]) GetByID(ctx context.Context, id string) (*E, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = ?", strings.Join(r.columns, ", "), r.table)
	entity, err := r.scan(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(query), id))
	if err != nil {
		return nil, database.ClassifySQLError(err)
	}
	return entity, nil
}

// FindAll returns every row of the table ordered by ID.
func (r *SQLRepository[E, P]) FindAll(ctx context.Context) ([]*E, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(r.columns, ", "), r.table)
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, database.ClassifySQLError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*E
	for rows.Next() {
		entity, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", database.ErrQuery, r.table, err)
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifySQLError(err)
	}
	return out, nil
}

// Count returns the number of rows.
func (r *SQLRepository[E, P]) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)
	if err := r.db.Conn(ctx).QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, database.ClassifySQLError(err)
	}
	return n, nil
}

// DeleteAll empties the table.
func (r *SQLRepository[E, P]) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Conn(ctx).ExecContext(ctx, "DELETE FROM "+r.table); err != nil {
		return database.ClassifySQLError(err)
	}
	return nil
}
