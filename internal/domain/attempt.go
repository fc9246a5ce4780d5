package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxVoicePathLength = 500

// Attempt is one learner's try at an exam (a "user exam").
// AttemptNo is assigned by the ledger and is unique per (user, exam)
// among non-deleted attempts.
type Attempt struct {
	ID                int64         `json:"id"`
	UserID            uuid.UUID     `json:"user_id"`
	ExamID            int64         `json:"exam_id"`
	AttemptNo         int           `json:"attempt_no"`
	Status            AttemptStatus `json:"status"`
	ResponseText      *string       `json:"response_text,omitempty"`
	ResponseVoicePath *string       `json:"response_voice_path,omitempty"`
	FeedbackID        *int64        `json:"feedback_id,omitempty"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAttempt builds a validated attempt with the given number and status.
func NewAttempt(userID uuid.UUID, examID int64, attemptNo int, status AttemptStatus, now time.Time) (*Attempt, error) {
	a := &Attempt{
		UserID:    userID,
		ExamID:    examID,
		AttemptNo: attemptNo,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the attempt fields.
func (a *Attempt) Validate() error {
	if a.UserID == uuid.Nil {
		return invalid("user_id", "cannot be empty")
	}
	if a.ExamID <= 0 {
		return invalid("exam_id", "must be positive")
	}
	if a.AttemptNo <= 0 {
		return invalid("attempt_no", "must be positive")
	}
	if !a.Status.Valid() {
		return ErrUnknownStatus
	}
	if a.ResponseVoicePath != nil && utf8.RuneCountInString(*a.ResponseVoicePath) > maxVoicePathLength {
		return invalid("response_voice_path", "exceeds 500 characters")
	}
	return nil
}

// Response is the learner's answer payload for an attempt.
type Response struct {
	Text      *string
	VoicePath *string
}

// Validate checks the response fields. At least one part must be present.
func (r Response) Validate() error {
	if r.Text == nil && r.VoicePath == nil {
		return invalid("response", "requires text or a voice path")
	}
	if r.VoicePath != nil {
		p := strings.TrimSpace(*r.VoicePath)
		if p == "" {
			return invalid("response_voice_path", "cannot be blank")
		}
		if utf8.RuneCountInString(p) > maxVoicePathLength {
			return invalid("response_voice_path", "exceeds 500 characters")
		}
	}
	return nil
}

// Feedback is free-text commentary that attempts may reference.
type Feedback struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFeedback builds a validated feedback record.
func NewFeedback(description string, now time.Time) (*Feedback, error) {
	f := &Feedback{
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the feedback fields.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Description) == "" {
		return invalid("description", "cannot be empty")
	}
	return nil
}
