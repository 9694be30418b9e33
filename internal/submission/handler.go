package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sharanvarma0/student-submissions/internal/app/apiresp"
	"github.com/sharanvarma0/student-submissions/internal/store"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc submissionService
}

type submissionService interface {
	RecordAnswers(ctx context.Context, userID, examName string, answers []string) (*store.ExamAnswer, error)
	CalculateResult(ctx context.Context, userID, examName string) (*ComputedResult, error)
	GetUser(ctx context.Context, userID string) (*store.User, error)
	GetExam(ctx context.Context, examName string) (*store.Exam, error)
	GetResult(ctx context.Context, userID string) (*store.Result, error)
	RegisterUser(ctx context.Context, in RegisterUserInput) (*store.User, error)
	CreateExam(ctx context.Context, in CreateExamInput) (*store.Exam, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	ListExams(ctx context.Context) ([]store.Exam, error)
	ListResults(ctx context.Context) ([]store.Result, error)
	ReplaceResults(ctx context.Context, userID string, entries []store.ExamResult) (*store.Result, error)
	ImportRosterExcel(ctx context.Context, r io.Reader) (*RosterImportReport, error)
	ExportRosterExcel(ctx context.Context) ([]byte, error)
}

type registerUserRequest struct {
	UserID        string   `json:"user_id"`
	UserName      string   `json:"user_name"`
	ExamsEnrolled []string `json:"exams_enrolled"`
}

type createExamRequest struct {
	ExamName  string           `json:"exam_name"`
	Questions []store.Question `json:"questions"`
}

type submitAnswersRequest struct {
	UserID   string   `json:"user_id"`
	ExamName string   `json:"exam_name"`
	Answers  []string `json:"answers"`
}

type replaceResultsRequest struct {
	UserID      string             `json:"user_id"`
	ExamResults []store.ExamResult `json:"exam_results"`
}

type calculateResultResponse struct {
	Message    string `json:"message"`
	Score      string `json:"score"`
	Percentage string `json:"percentage"`
	Grade      string `json:"grade"`
	Result     string `json:"result"`
}

func NewHandler(svc submissionService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), RegisterUserInput{
		UserID:        req.UserID,
		UserName:      req.UserName,
		ExamsEnrolled: req.ExamsEnrolled,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, "user_id and user_name are required")
		case errors.Is(err, ErrUserExists):
			apiresp.WriteError(w, r, http.StatusConflict, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, user)
}

func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var req createExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	exam, err := h.svc.CreateExam(r.Context(), CreateExamInput{
		ExamName:  req.ExamName,
		Questions: req.Questions,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, "exam_name is required")
		case errors.Is(err, ErrExamExists):
			apiresp.WriteError(w, r, http.StatusConflict, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, exam)
}

func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.svc.ListExams(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, exams)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	examName := chi.URLParam(r, "examName")
	exam, err := h.svc.GetExam(r.Context(), examName)
	if err != nil {
		if errors.Is(err, ErrExamNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, exam)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.ListResults(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, results)
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	result, err := h.svc.GetResult(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, result)
}

func (h *Handler) ReplaceResults(w http.ResponseWriter, r *http.Request) {
	var req replaceResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.svc.ReplaceResults(r.Context(), req.UserID, req.ExamResults)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, result)
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.ExamName == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "user_id and exam_name are required")
		return
	}

	entry, err := h.svc.RecordAnswers(r.Context(), req.UserID, req.ExamName, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrExamNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotEnrolled):
			apiresp.WriteError(w, r, http.StatusForbidden, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, entry)
}

func (h *Handler) CalculateResult(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	examName := chi.URLParam(r, "examName")

	computed, err := h.svc.CalculateResult(r.Context(), userID, examName)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrExamNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNoSubmission):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, calculateResultResponse{
		Message:    "Result calculated successfully",
		Score:      fmt.Sprintf("%d/%d", computed.Correct, computed.TotalQuestions),
		Percentage: fmt.Sprintf("%.1f%%", computed.Percentage),
		Grade:      computed.Grade,
		Result:     computed.Result,
	})
}

func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ImportRosterExcel(r.Context(), r.Body)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, report)
}

func (h *Handler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportRosterExcel(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
