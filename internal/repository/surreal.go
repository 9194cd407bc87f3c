package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgo/entityfactory/internal/database"
	"github.com/google/uuid"
)

// SurrealStore saves one entity type as records of one SurrealDB table.
// Record content is the entity's JSON form, so json tags name the fields.
type SurrealStore[E any, P record[E]] struct {
	db    database.Database
	table string
}

// NewSurrealStore creates a store for the table named by the entity.
func NewSurrealStore[E any, P record[E]](db database.Database) *SurrealStore[E, P] {
	var zero E
	return &SurrealStore[E, P]{db: db, table: P(&zero).Table()}
}

// Save creates a record with the entity's ID, assigning one when empty.
// Inside a SurrealTransactor unit the CREATE is queued on the unit of work
// and runs when the unit commits. An assigned ID is cleared again if the
// write fails or the unit is discarded.
func (s *SurrealStore[E, P]) Save(ctx context.Context, entity *E) (*E, error) {
	rec := P(entity)
	assigned := rec.GetID() == ""
	if assigned {
		rec.SetID(uuid.NewString())
	}
	unassign := func() {
		if assigned {
			rec.SetID("")
		}
	}

	content, err := toContent(entity)
	if err != nil {
		unassign()
		return nil, err
	}

	query := `CREATE type::thing($tb, $id) CONTENT $content`
	vars := map[string]any{
		"tb":      s.table,
		"id":      rec.GetID(),
		"content": content,
	}

	if uow, ok := database.UnitOfWorkFrom(ctx); ok {
		uow.AddWithRollback(query, vars, func(context.Context) error {
			unassign()
			return nil
		})
		return entity, nil
	}
	if err := s.db.Execute(ctx, query, vars); err != nil {
		unassign()
		return nil, err
	}
	return entity, nil
}

// GetByID loads one record.
func (s *SurrealStore[E, P]) GetByID(ctx context.Context, id string) (*E, error) {
	row, err := s.db.QueryOne(ctx, `SELECT * FROM type::thing($tb, $id)`, map[string]any{
		"tb": s.table,
		"id": id,
	})
	if err != nil {
		return nil, err
	}
	return fromRow[E, P](row)
}

// FindAll loads every record of the table.
func (s *SurrealStore[E, P]) FindAll(ctx context.Context) ([]*E, error) {
	results, err := s.db.Query(ctx, `SELECT * FROM type::table($tb)`, map[string]any{"tb": s.table})
	if err != nil {
		return nil, err
	}

	rows := database.Records(results, 0)
	out := make([]*E, 0, len(rows))
	for _, row := range rows {
		entity, err := fromRow[E, P](row)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Count returns the number of records in the table.
func (s *SurrealStore[E, P]) Count(ctx context.Context) (int, error) {
	row, err := s.db.QueryOne(ctx, `SELECT count() FROM type::table($tb) GROUP ALL`, map[string]any{"tb": s.table})
	if err != nil {
		return 0, err
	}
	if m, ok := row.(map[string]any); ok {
		return extractCountValue(m["count"]), nil
	}
	return 0, nil
}

// DeleteAll removes every record of the table.
func (s *SurrealStore[E, P]) DeleteAll(ctx context.Context) error {
	return s.db.Execute(ctx, `DELETE type::table($tb)`, map[string]any{"tb": s.table})
}

func toContent(entity any) (map[string]any, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	var content map[string]any
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	delete(content, "id")
	return content, nil
}

func fromRow[E any, P record[E]](row any) (*E, error) {
	m, ok := row.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected record %T", database.ErrQuery, row)
	}

	fields := make(map[string]any, len(m))
	for k, v := range m {
		if k != "id" {
			fields[k] = v
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	var entity E
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	P(&entity).SetID(extractRecordKey(m["id"]))
	return &entity, nil
}
