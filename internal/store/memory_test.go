package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryInsertAndGetUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.GetUser(ctx, "user001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user := &User{UserID: "user001", UserName: "John Doe", ExamsEnrolled: []string{"Basics"}}
	if err := m.InsertUser(ctx, user); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := m.InsertUser(ctx, &User{UserID: "user001", UserName: "Other"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same id, got %v", err)
	}
	if err := m.InsertUser(ctx, &User{UserID: "user002", UserName: "John Doe"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same name, got %v", err)
	}

	got, err := m.GetUser(ctx, "user001")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	// Returned documents must not alias stored state.
	got.ExamsEnrolled[0] = "Tampered"
	again, _ := m.GetUser(ctx, "user001")
	if again.ExamsEnrolled[0] != "Basics" {
		t.Fatalf("stored document was mutated through a returned copy")
	}
}

func TestMemoryUpsertExamAnswer(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.UpsertExamAnswer(ctx, "ghost", ExamAnswer{ExamName: "Basics"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.InsertUser(ctx, &User{UserID: "user001", UserName: "John Doe"}); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	if _, err := m.UpsertExamAnswer(ctx, "user001", ExamAnswer{ExamName: "Basics", Answers: []string{"a"}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	updated, err := m.UpsertExamAnswer(ctx, "user001", ExamAnswer{ExamName: "Basics", Answers: []string{"b"}})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(updated.ExamAnswers) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(updated.ExamAnswers))
	}
	if updated.ExamAnswers[0].Answers[0] != "b" {
		t.Fatalf("entry not replaced: %v", updated.ExamAnswers[0].Answers)
	}

	updated, err = m.UpsertExamAnswer(ctx, "user001", ExamAnswer{ExamName: "Other", Answers: []string{"c"}})
	if err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if len(updated.ExamAnswers) != 2 {
		t.Fatalf("expected 2 entries after new exam, got %d", len(updated.ExamAnswers))
	}
}

func TestMemoryUpsertExamResultLazyCreate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.GetResult(ctx, "user001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first result, got %v", err)
	}

	result, err := m.UpsertExamResult(ctx, "user001", ExamResult{ExamName: "Basics", ExamResult: "100.0% - A+ - Excellent"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if result.UserID != "user001" || len(result.ExamResults) != 1 {
		t.Fatalf("unexpected created result: %+v", result)
	}

	result, err = m.UpsertExamResult(ctx, "user001", ExamResult{ExamName: "Basics", ExamResult: "50.0% - C - Average"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(result.ExamResults) != 1 {
		t.Fatalf("expected in-place replace, got %d entries", len(result.ExamResults))
	}
	if result.ExamResults[0].ExamResult != "50.0% - C - Average" {
		t.Fatalf("entry not replaced: %q", result.ExamResults[0].ExamResult)
	}
}

func TestMemoryConcurrentUpsertsSingleEntry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.InsertUser(ctx, &User{UserID: "user001", UserName: "John Doe"}); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answer := fmt.Sprintf("a%d", i)
			if _, err := m.UpsertExamAnswer(ctx, "user001", ExamAnswer{ExamName: "Basics", Answers: []string{answer}}); err != nil {
				t.Errorf("upsert answer: %v", err)
			}
			if _, err := m.UpsertExamResult(ctx, "user001", ExamResult{ExamName: "Basics", ExamResult: answer}); err != nil {
				t.Errorf("upsert result: %v", err)
			}
		}(i)
	}
	wg.Wait()

	user, _ := m.GetUser(ctx, "user001")
	if len(user.ExamAnswers) != 1 {
		t.Fatalf("expected 1 answer entry after concurrent upserts, got %d", len(user.ExamAnswers))
	}
	result, _ := m.GetResult(ctx, "user001")
	if len(result.ExamResults) != 1 {
		t.Fatalf("expected 1 result entry after concurrent upserts, got %d", len(result.ExamResults))
	}
}

func TestMemoryReplaceExamResults(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	result, err := m.ReplaceExamResults(ctx, "user001", []ExamResult{
		{ExamName: "Basics", ExamResult: "100.0% - A+ - Excellent"},
		{ExamName: "Advanced", ExamResult: "0.0% - F - Fail"},
	})
	if err != nil {
		t.Fatalf("replace results: %v", err)
	}
	if len(result.ExamResults) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.ExamResults))
	}

	result, err = m.ReplaceExamResults(ctx, "user001", nil)
	if err != nil {
		t.Fatalf("replace with nil: %v", err)
	}
	if result.ExamResults == nil || len(result.ExamResults) != 0 {
		t.Fatalf("expected empty non-nil sequence, got %v", result.ExamResults)
	}
}

func TestMemoryListOrdering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := m.InsertUser(ctx, &User{UserID: id, UserName: "User " + id}); err != nil {
			t.Fatalf("insert user %s: %v", id, err)
		}
		if err := m.InsertExam(ctx, &Exam{ExamName: id}); err != nil {
			t.Fatalf("insert exam %s: %v", id, err)
		}
	}

	users, _ := m.ListUsers(ctx)
	if users[0].UserID != "a" || users[2].UserID != "c" {
		t.Fatalf("users not sorted by key: %v", users)
	}
	exams, _ := m.ListExams(ctx)
	if exams[0].ExamName != "a" || exams[2].ExamName != "c" {
		t.Fatalf("exams not sorted by key: %v", exams)
	}
}
