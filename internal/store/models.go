package store

// Option is one selectable choice on a question.
type Option struct {
	OptionID          string `json:"option_id"`
	OptionDescription string `json:"option_description"`
}

// Question carries its options inline; CorrectOption references one option_id.
type Question struct {
	QuestionID          string   `json:"question_id"`
	QuestionDescription string   `json:"question_description"`
	Options             []Option `json:"options"`
	CorrectOption       string   `json:"correct_option"`
}

// Exam is keyed by ExamName. Question order defines the positional
// correspondence used for scoring: the Nth submitted answer belongs to the
// Nth question.
type Exam struct {
	ExamName  string     `json:"exam_name"`
	Questions []Question `json:"questions"`
}

// ExamAnswer is one user's answer set for a single exam. Answers holds
// selected option_ids in question order.
type ExamAnswer struct {
	ExamName string   `json:"exam_name"`
	Answers  []string `json:"answers"`
}

// User is keyed by UserID. ExamAnswers holds at most one entry per exam name;
// all writes to it go through Store.UpsertExamAnswer, which replaces in place
// on an exam_name match.
type User struct {
	UserID        string       `json:"user_id"`
	UserName      string       `json:"user_name"`
	ExamsEnrolled []string     `json:"exams_enrolled"`
	ExamAnswers   []ExamAnswer `json:"exam_answers"`
	IsActive      bool         `json:"is_active"`
}

// ExamResult is one computed outcome, e.g. "50.0% - C - Average".
type ExamResult struct {
	ExamName   string `json:"exam_name"`
	ExamResult string `json:"exam_result"`
}

// Result is keyed by UserID and created lazily on the first computed result.
// ExamResults holds at most one entry per exam name; all writes to it go
// through Store.UpsertExamResult or Store.ReplaceExamResults.
type Result struct {
	UserID      string       `json:"user_id"`
	ExamResults []ExamResult `json:"exam_results"`
}
