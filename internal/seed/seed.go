// Package seed loads a small fixture set for local development and demos:
// two exams, three users, and the results the stock grading policy would
// produce for the pre-filled submissions.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharanvarma0/student-submissions/internal/store"
)

// Run inserts the sample documents, skipping any that already exist so
// repeated startups stay clean.
func Run(ctx context.Context, st store.Store) error {
	for i := range sampleExams {
		if err := st.InsertExam(ctx, &sampleExams[i]); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("seed exam %q: %w", sampleExams[i].ExamName, err)
		}
	}
	for i := range sampleUsers {
		if err := st.InsertUser(ctx, &sampleUsers[i]); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("seed user %q: %w", sampleUsers[i].UserID, err)
		}
	}
	for _, r := range sampleResults {
		if _, err := st.ReplaceExamResults(ctx, r.UserID, r.ExamResults); err != nil {
			return fmt.Errorf("seed result %q: %w", r.UserID, err)
		}
	}
	return nil
}

var sampleExams = []store.Exam{
	{
		ExamName: "Python Basics",
		Questions: []store.Question{
			{
				QuestionID:          "q1",
				QuestionDescription: "What is the correct way to create a list in Python?",
				Options: []store.Option{
					{OptionID: "a", OptionDescription: "list = []"},
					{OptionID: "b", OptionDescription: "list = {}"},
					{OptionID: "c", OptionDescription: "list = ()"},
					{OptionID: "d", OptionDescription: "list = <>"},
				},
				CorrectOption: "a",
			},
			{
				QuestionID:          "q2",
				QuestionDescription: "Which keyword is used to define a function in Python?",
				Options: []store.Option{
					{OptionID: "a", OptionDescription: "function"},
					{OptionID: "b", OptionDescription: "def"},
					{OptionID: "c", OptionDescription: "func"},
					{OptionID: "d", OptionDescription: "define"},
				},
				CorrectOption: "b",
			},
		},
	},
	{
		ExamName: "JavaScript Fundamentals",
		Questions: []store.Question{
			{
				QuestionID:          "q1",
				QuestionDescription: "How do you declare a variable in JavaScript?",
				Options: []store.Option{
					{OptionID: "a", OptionDescription: "var myVar;"},
					{OptionID: "b", OptionDescription: "variable myVar;"},
					{OptionID: "c", OptionDescription: "v myVar;"},
					{OptionID: "d", OptionDescription: "declare myVar;"},
				},
				CorrectOption: "a",
			},
			{
				QuestionID:          "q2",
				QuestionDescription: "What does '===' operator do in JavaScript?",
				Options: []store.Option{
					{OptionID: "a", OptionDescription: "Assigns a value"},
					{OptionID: "b", OptionDescription: "Compares values only"},
					{OptionID: "c", OptionDescription: "Compares values and types"},
					{OptionID: "d", OptionDescription: "Creates a new variable"},
				},
				CorrectOption: "c",
			},
		},
	},
}

var sampleUsers = []store.User{
	{
		UserID:        "user001",
		UserName:      "John Doe",
		ExamsEnrolled: []string{"Python Basics", "JavaScript Fundamentals"},
		ExamAnswers: []store.ExamAnswer{
			{ExamName: "Python Basics", Answers: []string{"a", "b"}},
		},
		IsActive: true,
	},
	{
		UserID:        "user002",
		UserName:      "Jane Smith",
		ExamsEnrolled: []string{"Python Basics"},
		ExamAnswers:   []store.ExamAnswer{},
		IsActive:      true,
	},
	{
		UserID:        "user003",
		UserName:      "Bob Johnson",
		ExamsEnrolled: []string{"JavaScript Fundamentals"},
		ExamAnswers: []store.ExamAnswer{
			{ExamName: "JavaScript Fundamentals", Answers: []string{"a", "c"}},
		},
		IsActive: true,
	},
}

var sampleResults = []store.Result{
	{
		UserID: "user001",
		ExamResults: []store.ExamResult{
			{ExamName: "Python Basics", ExamResult: "100.0% - A+ - Excellent"},
		},
	},
	{
		UserID: "user003",
		ExamResults: []store.ExamResult{
			{ExamName: "JavaScript Fundamentals", ExamResult: "100.0% - A+ - Excellent"},
		},
	},
}
