package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Fact struct {
	Key   string
	Value string
}

type UpsertFactParams struct {
	UserID string
	Key    string
	Value  string
}

const upsertFact = `
INSERT INTO facts (user_id, key, value, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, key) DO UPDATE SET
    value = excluded.value,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertFact(ctx context.Context, arg UpsertFactParams) error {
	_, err := q.db.ExecContext(ctx, upsertFact, arg.UserID, arg.Key, arg.Value)
	return err
}

type GetFactParams struct {
	UserID string
	Key    string
}

const getFact = `SELECT value FROM facts WHERE user_id = ? AND key = ?`

func (q *Queries) GetFact(ctx context.Context, arg GetFactParams) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getFact, arg.UserID, arg.Key).Scan(&value)
	return value, err
}

const listFacts = `SELECT key, value FROM facts WHERE user_id = ? ORDER BY key`

func (q *Queries) ListFacts(ctx context.Context, userID string) ([]Fact, error) {
	rows, err := q.db.QueryContext(ctx, listFacts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.Key, &f.Value); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteFacts = `DELETE FROM facts WHERE user_id = ?`

func (q *Queries) DeleteFacts(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFacts, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
