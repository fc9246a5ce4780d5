package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Exam time limits, in seconds.
const (
	MinExamTimeSeconds = 60
	MaxExamTimeSeconds = 36000

	maxPackTitleLength = 120
)

// SoftDelete is the logical-deletion state shared by every entity.
// Rows are never physically removed; readers must filter on IsDeleted.
type SoftDelete struct {
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Pack is a themed bundle of section exams within one exam system.
type Pack struct {
	ID     int64      `json:"id"`
	System ExamSystem `json:"system"`
	Title  string     `json:"title"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPack builds a validated pack stamped with now.
func NewPack(system ExamSystem, title string, now time.Time) (*Pack, error) {
	p := &Pack{
		System:    system,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the pack fields.
func (p *Pack) Validate() error {
	if !p.System.Valid() {
		return ErrUnknownSystem
	}
	if p.Title == "" {
		return invalid("title", "cannot be empty")
	}
	if utf8.RuneCountInString(p.Title) > maxPackTitleLength {
		return invalid("title", "exceeds 120 characters")
	}
	return nil
}

// Exam is one section of a pack.
type Exam struct {
	ID               int64      `json:"id"`
	PackID           *int64     `json:"pack_id,omitempty"`
	Section          Section    `json:"section"`
	System           ExamSystem `json:"system"`
	TimeLimitSeconds int        `json:"exam_time_seconds"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewExam builds a validated exam. packID may be nil for a standalone exam.
func NewExam(packID *int64, section Section, system ExamSystem, timeLimitSeconds int, now time.Time) (*Exam, error) {
	e := &Exam{
		PackID:           packID,
		Section:          section,
		System:           system,
		TimeLimitSeconds: timeLimitSeconds,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the exam fields.
func (e *Exam) Validate() error {
	if !e.Section.Valid() {
		return ErrUnknownSection
	}
	if !e.System.Valid() {
		return ErrUnknownSystem
	}
	if e.TimeLimitSeconds < MinExamTimeSeconds || e.TimeLimitSeconds > MaxExamTimeSeconds {
		return invalid("exam_time_seconds", "must be between 60 and 36000")
	}
	if e.PackID != nil && *e.PackID <= 0 {
		return invalid("pack_id", "must be positive")
	}
	return nil
}

// Question is a numbered prompt inside an exam.
type Question struct {
	ID          int64  `json:"id"`
	ExamID      int64  `json:"exam_id"`
	Number      int    `json:"number"`
	Description string `json:"description"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQuestion builds a validated question.
func NewQuestion(examID int64, number int, description string, now time.Time) (*Question, error) {
	q := &Question{
		ExamID:      examID,
		Number:      number,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the question fields.
func (q *Question) Validate() error {
	if q.ExamID <= 0 {
		return invalid("exam_id", "must be positive")
	}
	if q.Number <= 0 {
		return invalid("number", "must be positive")
	}
	if strings.TrimSpace(q.Description) == "" {
		return invalid("description", "cannot be empty")
	}
	return nil
}

// SectionExam pairs a section with the exam that implements it.
type SectionExam struct {
	Section Section `json:"section"`
	ExamID  int64   `json:"exam_id"`
}

// SectionSlots maps each section to an id, or nil when the slot is empty.
type SectionSlots struct {
	Speaking  *int64 `json:"speaking"`
	Writing   *int64 `json:"writing"`
	Reading   *int64 `json:"reading"`
	Listening *int64 `json:"listening"`
}

// Get returns the slot for sec.
func (s *SectionSlots) Get(sec Section) *int64 {
	switch sec {
	case SectionSpeaking:
		return s.Speaking
	case SectionWriting:
		return s.Writing
	case SectionReading:
		return s.Reading
	case SectionListening:
		return s.Listening
	}
	return nil
}

// Set stores id in the slot for sec. Unknown sections are ignored.
func (s *SectionSlots) Set(sec Section, id int64) {
	switch sec {
	case SectionSpeaking:
		s.Speaking = &id
	case SectionWriting:
		s.Writing = &id
	case SectionReading:
		s.Reading = &id
	case SectionListening:
		s.Listening = &id
	}
}

// PackCard is the catalog view of a pack: which exam serves each section.
type PackCard struct {
	PackID   int64        `json:"id"`
	Title    string       `json:"title"`
	System   ExamSystem   `json:"system"`
	Sections SectionSlots `json:"sections"`
}
