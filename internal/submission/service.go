package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sharanvarma0/student-submissions/internal/store"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrExamNotFound   = errors.New("exam not found")
	ErrResultNotFound = errors.New("results not found for this user")
	ErrNotEnrolled    = errors.New("user is not enrolled in this exam")
	ErrNoSubmission   = errors.New("user has not submitted answers for this exam")
	ErrUserExists     = errors.New("user with this user_id or user_name already exists")
	ErrExamExists     = errors.New("exam with this name already exists")
	ErrInvalidInput   = errors.New("invalid input")
)

// Service implements the submission and result-computation core over a record
// store. The store handle is passed in at construction; the service holds no
// other process state.
type Service struct {
	store  store.Store
	grades GradeScale
}

type RegisterUserInput struct {
	UserID        string
	UserName      string
	ExamsEnrolled []string
}

type CreateExamInput struct {
	ExamName  string
	Questions []store.Question
}

// ComputedResult is the outcome of one calculate-result run.
type ComputedResult struct {
	Correct        int
	TotalQuestions int
	Percentage     float64
	Grade          string
	Result         string
}

func NewService(st store.Store, grades GradeScale) *Service {
	if len(grades) == 0 {
		grades = DefaultGradeScale()
	}
	return &Service{store: st, grades: grades}
}

// RecordAnswers verifies the user exists, is enrolled, and the exam exists,
// then inserts or replaces the user's answer entry for the exam. Answer
// length is deliberately not validated against the question list; scoring
// copes with short or long answer sets.
func (s *Service) RecordAnswers(ctx context.Context, userID, examName string, answers []string) (*store.ExamAnswer, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !contains(user.ExamsEnrolled, examName) {
		return nil, ErrNotEnrolled
	}

	if _, err := s.store.GetExam(ctx, examName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	entry := store.ExamAnswer{ExamName: examName, Answers: append([]string(nil), answers...)}
	if entry.Answers == nil {
		entry.Answers = []string{}
	}
	if _, err := s.store.UpsertExamAnswer(ctx, userID, entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store answers: %w", err)
	}
	return &entry, nil
}

// CalculateResult recomputes the user's result for one exam from the
// currently stored answers and merges it into the result record. Safe to call
// repeatedly; a changed submission followed by recalculation overwrites the
// stored entry in place.
func (s *Service) CalculateResult(ctx context.Context, userID, examName string) (*ComputedResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	var answers []string
	found := false
	for _, entry := range user.ExamAnswers {
		if entry.ExamName == examName {
			answers = entry.Answers
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNoSubmission
	}

	exam, err := s.store.GetExam(ctx, examName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	correct, percentage := ScoreExam(exam, answers)
	grade := s.grades.Grade(percentage)
	resultText := FormatResult(percentage, grade)

	if _, err := s.store.UpsertExamResult(ctx, userID, store.ExamResult{
		ExamName:   examName,
		ExamResult: resultText,
	}); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	return &ComputedResult{
		Correct:        correct,
		TotalQuestions: len(exam.Questions),
		Percentage:     percentage,
		Grade:          grade,
		Result:         resultText,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*store.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *Service) GetExam(ctx context.Context, examName string) (*store.Exam, error) {
	exam, err := s.store.GetExam(ctx, examName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	return exam, nil
}

func (s *Service) GetResult(ctx context.Context, userID string) (*store.Result, error) {
	result, err := s.store.GetResult(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	return result, nil
}

func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (*store.User, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.UserName = strings.TrimSpace(in.UserName)
	if in.UserID == "" || in.UserName == "" {
		return nil, ErrInvalidInput
	}

	user := &store.User{
		UserID:        in.UserID,
		UserName:      in.UserName,
		ExamsEnrolled: append([]string(nil), in.ExamsEnrolled...),
		ExamAnswers:   []store.ExamAnswer{},
		IsActive:      true,
	}
	if user.ExamsEnrolled == nil {
		user.ExamsEnrolled = []string{}
	}

	if err := s.store.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *Service) CreateExam(ctx context.Context, in CreateExamInput) (*store.Exam, error) {
	in.ExamName = strings.TrimSpace(in.ExamName)
	if in.ExamName == "" {
		return nil, ErrInvalidInput
	}

	exam := &store.Exam{ExamName: in.ExamName, Questions: in.Questions}
	if exam.Questions == nil {
		exam.Questions = []store.Question{}
	}

	if err := s.store.InsertExam(ctx, exam); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrExamExists
		}
		return nil, fmt.Errorf("insert exam: %w", err)
	}
	return exam, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]store.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) ListExams(ctx context.Context) ([]store.Exam, error) {
	exams, err := s.store.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

func (s *Service) ListResults(ctx context.Context) ([]store.Result, error) {
	results, err := s.store.ListResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// ReplaceResults overwrites a user's whole result record. Admin surface; the
// normal path is CalculateResult.
func (s *Service) ReplaceResults(ctx context.Context, userID string, entries []store.ExamResult) (*store.Result, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	result, err := s.store.ReplaceExamResults(ctx, userID, entries)
	if err != nil {
		return nil, fmt.Errorf("replace results: %w", err)
	}
	return result, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
