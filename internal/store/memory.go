package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is a map-backed Store. It stands in for stores without an atomic
// upsert-by-key primitive: every read-modify-write on a user's document runs
// under that user's lock, so interleaved upserts cannot clobber each other.
// Used by tests and for local development without Postgres.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]User
	exams   map[string]Exam
	results map[string]Result

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]User),
		exams:   make(map[string]Exam),
		results: make(map[string]Result),
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing writes for one user_id, creating it
// on first use.
func (m *Memory) userLock(userID string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

func (m *Memory) GetUser(_ context.Context, userID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneUser(u)
	return &copied, nil
}

func (m *Memory) InsertUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; ok {
		return ErrDuplicate
	}
	for _, existing := range m.users {
		if existing.UserName == user.UserName {
			return ErrDuplicate
		}
	}
	m.users[user.UserID] = cloneUser(*user)
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *Memory) GetExam(_ context.Context, examName string) (*Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[examName]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneExam(e)
	return &copied, nil
}

func (m *Memory) InsertExam(_ context.Context, exam *Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[exam.ExamName]; ok {
		return ErrDuplicate
	}
	m.exams[exam.ExamName] = cloneExam(*exam)
	return nil
}

func (m *Memory) ListExams(_ context.Context) ([]Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Exam, 0, len(m.exams))
	for _, e := range m.exams {
		out = append(out, cloneExam(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExamName < out[j].ExamName })
	return out, nil
}

func (m *Memory) GetResult(_ context.Context, userID string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneResult(r)
	return &copied, nil
}

func (m *Memory) ListResults(_ context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, cloneResult(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *Memory) UpsertExamAnswer(_ context.Context, userID string, entry ExamAnswer) (*User, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	replaced := false
	for i := range u.ExamAnswers {
		if u.ExamAnswers[i].ExamName == entry.ExamName {
			u.ExamAnswers[i] = cloneExamAnswer(entry)
			replaced = true
			break
		}
	}
	if !replaced {
		u.ExamAnswers = append(u.ExamAnswers, cloneExamAnswer(entry))
	}
	m.users[userID] = u

	copied := cloneUser(u)
	return &copied, nil
}

func (m *Memory) UpsertExamResult(_ context.Context, userID string, entry ExamResult) (*Result, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.results[userID]
	if !ok {
		r = Result{UserID: userID, ExamResults: []ExamResult{}}
	}

	replaced := false
	for i := range r.ExamResults {
		if r.ExamResults[i].ExamName == entry.ExamName {
			r.ExamResults[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		r.ExamResults = append(r.ExamResults, entry)
	}
	m.results[userID] = r

	copied := cloneResult(r)
	return &copied, nil
}

func (m *Memory) ReplaceExamResults(_ context.Context, userID string, entries []ExamResult) (*Result, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	r := Result{UserID: userID, ExamResults: append([]ExamResult(nil), entries...)}
	if r.ExamResults == nil {
		r.ExamResults = []ExamResult{}
	}
	m.results[userID] = r

	copied := cloneResult(r)
	return &copied, nil
}

func cloneUser(u User) User {
	out := u
	out.ExamsEnrolled = append([]string(nil), u.ExamsEnrolled...)
	out.ExamAnswers = make([]ExamAnswer, 0, len(u.ExamAnswers))
	for _, a := range u.ExamAnswers {
		out.ExamAnswers = append(out.ExamAnswers, cloneExamAnswer(a))
	}
	return out
}

func cloneExamAnswer(a ExamAnswer) ExamAnswer {
	return ExamAnswer{
		ExamName: a.ExamName,
		Answers:  append([]string(nil), a.Answers...),
	}
}

func cloneExam(e Exam) Exam {
	out := e
	out.Questions = make([]Question, 0, len(e.Questions))
	for _, q := range e.Questions {
		qq := q
		qq.Options = append([]Option(nil), q.Options...)
		out.Questions = append(out.Questions, qq)
	}
	return out
}

func cloneResult(r Result) Result {
	out := r
	out.ExamResults = append([]ExamResult(nil), r.ExamResults...)
	return out
}
