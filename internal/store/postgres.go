package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Postgres stores each collection as a table of JSONB documents keyed by the
// record's natural string key. Array-entry merges run as single SQL statements
// so the read and write halves never straddle a round-trip.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the three collection tables when missing. Called once
// at process start.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exams (
			exam_name TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			user_id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := p.getDoc(ctx, `SELECT doc FROM users WHERE user_id = $1`, userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) InsertUser(ctx context.Context, user *User) error {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE user_id = $1 OR doc->>'user_name' = $2
		)
	`, user.UserID, user.UserName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return ErrDuplicate
	}
	return p.insertDoc(ctx, `INSERT INTO users (user_id, doc) VALUES ($1, $2::jsonb) ON CONFLICT (user_id) DO NOTHING`, user.UserID, user)
}

func (p *Postgres) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT doc FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan user doc: %w", err)
		}
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode user doc: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetExam(ctx context.Context, examName string) (*Exam, error) {
	var exam Exam
	if err := p.getDoc(ctx, `SELECT doc FROM exams WHERE exam_name = $1`, examName, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

func (p *Postgres) InsertExam(ctx context.Context, exam *Exam) error {
	return p.insertDoc(ctx, `INSERT INTO exams (exam_name, doc) VALUES ($1, $2::jsonb) ON CONFLICT (exam_name) DO NOTHING`, exam.ExamName, exam)
}

func (p *Postgres) ListExams(ctx context.Context) ([]Exam, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT doc FROM exams ORDER BY exam_name`)
	if err != nil {
		return nil, fmt.Errorf("query exams: %w", err)
	}
	defer rows.Close()

	out := make([]Exam, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan exam doc: %w", err)
		}
		var e Exam
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode exam doc: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exams: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetResult(ctx context.Context, userID string) (*Result, error) {
	var result Result
	if err := p.getDoc(ctx, `SELECT doc FROM results WHERE user_id = $1`, userID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *Postgres) ListResults(ctx context.Context) ([]Result, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT doc FROM results ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := make([]Result, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan result doc: %w", err)
		}
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode result doc: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// UpsertExamAnswer rewrites the exam_answers array in one UPDATE: when an
// entry with the same exam_name exists it is replaced element-wise, otherwise
// the new entry is appended. Concurrent submissions for the same user can
// therefore never duplicate an exam_name.
func (p *Postgres) UpsertExamAnswer(ctx context.Context, userID string, entry ExamAnswer) (*User, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode answer entry: %w", err)
	}

	var raw []byte
	err = p.db.QueryRowContext(ctx, `
		UPDATE users
		SET doc = jsonb_set(
			doc,
			'{exam_answers}',
			CASE
				WHEN COALESCE(doc->'exam_answers', '[]'::jsonb)
					@> jsonb_build_array(jsonb_build_object('exam_name', $2::text))
				THEN (
					SELECT jsonb_agg(
						CASE WHEN e->>'exam_name' = $2::text THEN $3::jsonb ELSE e END
					)
					FROM jsonb_array_elements(doc->'exam_answers') AS e
				)
				ELSE COALESCE(doc->'exam_answers', '[]'::jsonb) || jsonb_build_array($3::jsonb)
			END
		)
		WHERE user_id = $1
		RETURNING doc
	`, userID, entry.ExamName, string(entryJSON)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("upsert exam answer: %w", err)
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user doc: %w", err)
	}
	return &user, nil
}

// UpsertExamResult creates the result document on first use and merges the
// entry in the same ON CONFLICT statement.
func (p *Postgres) UpsertExamResult(ctx context.Context, userID string, entry ExamResult) (*Result, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode result entry: %w", err)
	}

	var raw []byte
	err = p.db.QueryRowContext(ctx, `
		INSERT INTO results (user_id, doc)
		VALUES (
			$1,
			jsonb_build_object(
				'user_id', $1::text,
				'exam_results', jsonb_build_array($3::jsonb)
			)
		)
		ON CONFLICT (user_id) DO UPDATE
		SET doc = jsonb_set(
			results.doc,
			'{exam_results}',
			CASE
				WHEN COALESCE(results.doc->'exam_results', '[]'::jsonb)
					@> jsonb_build_array(jsonb_build_object('exam_name', $2::text))
				THEN (
					SELECT jsonb_agg(
						CASE WHEN e->>'exam_name' = $2::text THEN $3::jsonb ELSE e END
					)
					FROM jsonb_array_elements(results.doc->'exam_results') AS e
				)
				ELSE COALESCE(results.doc->'exam_results', '[]'::jsonb) || jsonb_build_array($3::jsonb)
			END
		)
		RETURNING doc
	`, userID, entry.ExamName, string(entryJSON)).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("upsert exam result: %w", err)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode result doc: %w", err)
	}
	return &result, nil
}

func (p *Postgres) ReplaceExamResults(ctx context.Context, userID string, entries []ExamResult) (*Result, error) {
	doc := Result{UserID: userID, ExamResults: entries}
	if doc.ExamResults == nil {
		doc.ExamResults = []ExamResult{}
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode result doc: %w", err)
	}

	var raw []byte
	err = p.db.QueryRowContext(ctx, `
		INSERT INTO results (user_id, doc)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc
		RETURNING doc
	`, userID, string(docJSON)).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("replace exam results: %w", err)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode result doc: %w", err)
	}
	return &result, nil
}

func (p *Postgres) getDoc(ctx context.Context, query, key string, dst interface{}) error {
	var raw []byte
	if err := p.db.QueryRowContext(ctx, query, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load document: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func (p *Postgres) insertDoc(ctx context.Context, query, key string, doc interface{}) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	res, err := p.db.ExecContext(ctx, query, key, string(docJSON))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert document rows: %w", err)
	}
	if affected == 0 {
		return ErrDuplicate
	}
	return nil
}
