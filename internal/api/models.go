package api

import (
	"time"

	"github.com/phrazzld/examprep-api/internal/domain"
)

// CreatePackRequest defines the payload for POST /api/admin/packs.
type CreatePackRequest struct {
	System string `json:"system" validate:"required,oneof=ielts toefl general"`
	Title  string `json:"title"  validate:"required,max=120"`
}

// CreateExamRequest defines the payload for creating an exam. PackID is taken
// from the path when the exam is created inside a pack.
type CreateExamRequest struct {
	Section         string `json:"section"           validate:"required,oneof=listening reading writing speaking"`
	System          string `json:"system"            validate:"required,oneof=ielts toefl general"`
	ExamTimeSeconds int    `json:"exam_time_seconds" validate:"required,gte=60,lte=36000"`
}

// CreateQuestionRequest defines the payload for POST /api/admin/exams/{examID}/questions.
type CreateQuestionRequest struct {
	Number      int    `json:"number"      validate:"required,gte=1"`
	Description string `json:"description" validate:"required"`
}

// CreateAttemptRequest defines the optional payload for starting an attempt.
// An empty status starts a draft.
type CreateAttemptRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=draft in_progress"`
}

// AdvanceStatusRequest defines the payload for a learner's status change.
// Learners may only start or submit; review and grading go through the
// admin route.
type AdvanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress submitted"`
}

// GradeStatusRequest defines the payload for POST /api/admin/attempts/{attemptID}/status.
type GradeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress submitted reviewed graded"`
}

// RecordResponseRequest defines the payload for PUT /api/attempts/{attemptID}/response.
type RecordResponseRequest struct {
	ResponseText      *string `json:"response_text"       validate:"required_without=ResponseVoicePath"`
	ResponseVoicePath *string `json:"response_voice_path" validate:"omitempty,max=500"`
}

// CreateFeedbackRequest defines the payload for POST /api/admin/feedback.
type CreateFeedbackRequest struct {
	Description string `json:"description" validate:"required"`
}

// AttachFeedbackRequest defines the payload for POST /api/admin/attempts/{attemptID}/feedback.
type AttachFeedbackRequest struct {
	FeedbackID int64 `json:"feedback_id" validate:"required,gt=0"`
}

// PackResponse is the client view of a pack.
type PackResponse struct {
	ID        int64     `json:"id"`
	System    string    `json:"system"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ExamResponse is the client view of an exam.
type ExamResponse struct {
	ID              int64     `json:"id"`
	PackID          *int64    `json:"pack_id,omitempty"`
	Section         string    `json:"section"`
	System          string    `json:"system"`
	ExamTimeSeconds int       `json:"exam_time_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// QuestionResponse is the client view of a question.
type QuestionResponse struct {
	ID          int64  `json:"id"`
	ExamID      int64  `json:"exam_id"`
	Number      int    `json:"number"`
	Description string `json:"description"`
}

// AttemptResponse is the client view of an attempt.
type AttemptResponse struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"user_id"`
	ExamID            int64     `json:"exam_id"`
	AttemptNo         int       `json:"attempt_no"`
	Status            string    `json:"status"`
	ResponseText      *string   `json:"response_text,omitempty"`
	ResponseVoicePath *string   `json:"response_voice_path,omitempty"`
	FeedbackID        *int64    `json:"feedback_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FeedbackResponse is the client view of a feedback record.
type FeedbackResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func packToResponse(p *domain.Pack) PackResponse {
	return PackResponse{
		ID:        p.ID,
		System:    string(p.System),
		Title:     p.Title,
		CreatedAt: p.CreatedAt,
	}
}

func examToResponse(e *domain.Exam) ExamResponse {
	return ExamResponse{
		ID:              e.ID,
		PackID:          e.PackID,
		Section:         string(e.Section),
		System:          string(e.System),
		ExamTimeSeconds: e.TimeLimitSeconds,
		CreatedAt:       e.CreatedAt,
	}
}

func questionToResponse(q *domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:          q.ID,
		ExamID:      q.ExamID,
		Number:      q.Number,
		Description: q.Description,
	}
}

func attemptToResponse(a *domain.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:                a.ID,
		UserID:            a.UserID.String(),
		ExamID:            a.ExamID,
		AttemptNo:         a.AttemptNo,
		Status:            string(a.Status),
		ResponseText:      a.ResponseText,
		ResponseVoicePath: a.ResponseVoicePath,
		FeedbackID:        a.FeedbackID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func attemptsToResponse(attempts []*domain.Attempt) []AttemptResponse {
	out := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, attemptToResponse(a))
	}
	return out
}

func feedbackToResponse(f *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
	}
}
