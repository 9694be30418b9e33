package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists for the given key.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert collides with an existing key
	// or a unique field.
	ErrDuplicate = errors.New("document already exists")
)

// Store is the record-store contract consumed by the submission core. Three
// collections back it: users keyed by user_id, exams keyed by exam_name,
// results keyed by user_id.
//
// UpsertExamAnswer and UpsertExamResult must be atomic with respect to their
// read-modify-write cycle: two concurrent upserts for the same key must never
// leave two entries for the same exam name. The Postgres implementation does
// the merge in a single SQL statement; the in-memory implementation holds a
// per-key lock across the section.
type Store interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	InsertUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context) ([]User, error)

	GetExam(ctx context.Context, examName string) (*Exam, error)
	InsertExam(ctx context.Context, exam *Exam) error
	ListExams(ctx context.Context) ([]Exam, error)

	GetResult(ctx context.Context, userID string) (*Result, error)
	ListResults(ctx context.Context) ([]Result, error)

	// UpsertExamAnswer inserts or replaces the user's exam_answers entry
	// matching entry.ExamName and returns the updated user document.
	// Returns ErrNotFound when the user does not exist.
	UpsertExamAnswer(ctx context.Context, userID string, entry ExamAnswer) (*User, error)

	// UpsertExamResult inserts or replaces the exam_results entry matching
	// entry.ExamName, creating the result document if absent, and returns
	// the updated result document.
	UpsertExamResult(ctx context.Context, userID string, entry ExamResult) (*Result, error)

	// ReplaceExamResults overwrites the user's whole exam_results sequence,
	// creating the result document if absent.
	ReplaceExamResults(ctx context.Context, userID string, entries []ExamResult) (*Result, error)
}
