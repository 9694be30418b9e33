package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sharanvarma0/student-submissions/internal/store"

	"github.com/go-chi/chi/v5"
)

type mockSubmissionService struct {
	recordAnswersFn     func(ctx context.Context, userID, examName string, answers []string) (*store.ExamAnswer, error)
	calculateResultFn   func(ctx context.Context, userID, examName string) (*ComputedResult, error)
	getUserFn           func(ctx context.Context, userID string) (*store.User, error)
	getExamFn           func(ctx context.Context, examName string) (*store.Exam, error)
	getResultFn         func(ctx context.Context, userID string) (*store.Result, error)
	registerUserFn      func(ctx context.Context, in RegisterUserInput) (*store.User, error)
	createExamFn        func(ctx context.Context, in CreateExamInput) (*store.Exam, error)
	listUsersFn         func(ctx context.Context) ([]store.User, error)
	listExamsFn         func(ctx context.Context) ([]store.Exam, error)
	listResultsFn       func(ctx context.Context) ([]store.Result, error)
	replaceResultsFn    func(ctx context.Context, userID string, entries []store.ExamResult) (*store.Result, error)
	importRosterExcelFn func(ctx context.Context, r io.Reader) (*RosterImportReport, error)
	exportRosterExcelFn func(ctx context.Context) ([]byte, error)
}

func (m *mockSubmissionService) RecordAnswers(ctx context.Context, userID, examName string, answers []string) (*store.ExamAnswer, error) {
	if m.recordAnswersFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.recordAnswersFn(ctx, userID, examName, answers)
}

func (m *mockSubmissionService) CalculateResult(ctx context.Context, userID, examName string) (*ComputedResult, error) {
	if m.calculateResultFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.calculateResultFn(ctx, userID, examName)
}

func (m *mockSubmissionService) GetUser(ctx context.Context, userID string) (*store.User, error) {
	if m.getUserFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getUserFn(ctx, userID)
}

func (m *mockSubmissionService) GetExam(ctx context.Context, examName string) (*store.Exam, error) {
	if m.getExamFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getExamFn(ctx, examName)
}

func (m *mockSubmissionService) GetResult(ctx context.Context, userID string) (*store.Result, error) {
	if m.getResultFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getResultFn(ctx, userID)
}

func (m *mockSubmissionService) RegisterUser(ctx context.Context, in RegisterUserInput) (*store.User, error) {
	if m.registerUserFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.registerUserFn(ctx, in)
}

func (m *mockSubmissionService) CreateExam(ctx context.Context, in CreateExamInput) (*store.Exam, error) {
	if m.createExamFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.createExamFn(ctx, in)
}

func (m *mockSubmissionService) ListUsers(ctx context.Context) ([]store.User, error) {
	if m.listUsersFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.listUsersFn(ctx)
}

func (m *mockSubmissionService) ListExams(ctx context.Context) ([]store.Exam, error) {
	if m.listExamsFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.listExamsFn(ctx)
}

func (m *mockSubmissionService) ListResults(ctx context.Context) ([]store.Result, error) {
	if m.listResultsFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.listResultsFn(ctx)
}

func (m *mockSubmissionService) ReplaceResults(ctx context.Context, userID string, entries []store.ExamResult) (*store.Result, error) {
	if m.replaceResultsFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.replaceResultsFn(ctx, userID, entries)
}

func (m *mockSubmissionService) ImportRosterExcel(ctx context.Context, r io.Reader) (*RosterImportReport, error) {
	if m.importRosterExcelFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.importRosterExcelFn(ctx, r)
}

func (m *mockSubmissionService) ExportRosterExcel(ctx context.Context) ([]byte, error) {
	if m.exportRosterExcelFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.exportRosterExcelFn(ctx)
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/users", h.RegisterUser)
	r.Get("/users/{userID}", h.GetUser)
	r.Get("/exams/{examName}", h.GetExam)
	r.Get("/results/{userID}", h.GetResult)
	r.Post("/submit-answers", h.SubmitAnswers)
	r.Post("/calculate-result/{userID}/{examName}", h.CalculateResult)
	return r
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestSubmitAnswersHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "ok", body: `{"user_id":"user001","exam_name":"Basics","answers":["a","b"]}`, wantStatus: http.StatusOK},
		{name: "invalid body", body: `{"user_id":`, wantStatus: http.StatusBadRequest},
		{name: "missing fields", body: `{"answers":["a"]}`, wantStatus: http.StatusBadRequest},
		{name: "unknown user", body: `{"user_id":"ghost","exam_name":"Basics","answers":[]}`, serviceErr: ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "unknown exam", body: `{"user_id":"user001","exam_name":"Nope","answers":[]}`, serviceErr: ErrExamNotFound, wantStatus: http.StatusNotFound},
		{name: "not enrolled", body: `{"user_id":"user001","exam_name":"Other","answers":[]}`, serviceErr: ErrNotEnrolled, wantStatus: http.StatusForbidden},
		{name: "internal error", body: `{"user_id":"user001","exam_name":"Basics","answers":[]}`, serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSubmissionService{
				recordAnswersFn: func(ctx context.Context, userID, examName string, answers []string) (*store.ExamAnswer, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &store.ExamAnswer{ExamName: examName, Answers: answers}, nil
				},
			}
			router := newTestRouter(NewHandler(svc))

			req := httptest.NewRequest(http.MethodPost, "/submit-answers", bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d (body=%s)", tc.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCalculateResultHandler(t *testing.T) {
	svc := &mockSubmissionService{
		calculateResultFn: func(ctx context.Context, userID, examName string) (*ComputedResult, error) {
			if userID != "user001" || examName != "Basics" {
				t.Fatalf("unexpected params: %s %s", userID, examName)
			}
			return &ComputedResult{
				Correct:        1,
				TotalQuestions: 2,
				Percentage:     50,
				Grade:          "C - Average",
				Result:         "50.0% - C - Average",
			}, nil
		},
	}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/calculate-result/user001/Basics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w.Body)
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data payload: %s", w.Body.String())
	}
	if data["score"] != "1/2" || data["percentage"] != "50.0%" || data["result"] != "50.0% - C - Average" {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestCalculateResultHandlerNoSubmission(t *testing.T) {
	svc := &mockSubmissionService{
		calculateResultFn: func(ctx context.Context, userID, examName string) (*ComputedResult, error) {
			return nil, ErrNoSubmission
		},
	}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/calculate-result/user001/Basics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetUserHandlerNotFound(t *testing.T) {
	svc := &mockSubmissionService{
		getUserFn: func(ctx context.Context, userID string) (*store.User, error) {
			return nil, ErrUserNotFound
		},
	}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w.Body)
	if envelope["ok"] != false {
		t.Fatalf("expected ok=false, got %v", envelope["ok"])
	}
}

func TestRegisterUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "created", body: `{"user_id":"user100","user_name":"New Person"}`, wantStatus: http.StatusCreated},
		{name: "duplicate", body: `{"user_id":"user001","user_name":"John Doe"}`, serviceErr: ErrUserExists, wantStatus: http.StatusConflict},
		{name: "invalid", body: `{"user_name":"No ID"}`, serviceErr: ErrInvalidInput, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSubmissionService{
				registerUserFn: func(ctx context.Context, in RegisterUserInput) (*store.User, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &store.User{UserID: in.UserID, UserName: in.UserName, IsActive: true}, nil
				},
			}
			router := newTestRouter(NewHandler(svc))

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestGetExamHandlerURLParamDecoding(t *testing.T) {
	svc := &mockSubmissionService{
		getExamFn: func(ctx context.Context, examName string) (*store.Exam, error) {
			if examName != "Python Basics" {
				t.Fatalf("expected decoded exam name, got %q", examName)
			}
			return &store.Exam{ExamName: examName}, nil
		},
	}
	router := newTestRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/exams/Python%20Basics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
