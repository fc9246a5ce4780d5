package domain

import "strings"

// ExamSystem identifies the exam family a pack or exam belongs to.
type ExamSystem string

// Supported exam systems.
const (
	ExamSystemIELTS   ExamSystem = "ielts"
	ExamSystemTOEFL   ExamSystem = "toefl"
	ExamSystemGeneral ExamSystem = "general"
)

// ParseExamSystem normalizes s and returns the matching ExamSystem.
// Matching is case-insensitive so "IELTS" and "ielts" are equivalent.
func ParseExamSystem(s string) (ExamSystem, error) {
	sys := ExamSystem(strings.ToLower(strings.TrimSpace(s)))
	if !sys.Valid() {
		return "", ErrUnknownSystem
	}
	return sys, nil
}

// Valid reports whether s is one of the supported systems.
func (s ExamSystem) Valid() bool {
	switch s {
	case ExamSystemIELTS, ExamSystemTOEFL, ExamSystemGeneral:
		return true
	default:
		return false
	}
}

// Section is one timed part of a pack.
type Section string

// Exam sections.
const (
	SectionListening Section = "listening"
	SectionReading   Section = "reading"
	SectionWriting   Section = "writing"
	SectionSpeaking  Section = "speaking"
)

// Sections lists every section in canonical order.
var Sections = []Section{SectionListening, SectionReading, SectionWriting, SectionSpeaking}

// ParseSection normalizes s and returns the matching Section.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	if !sec.Valid() {
		return "", ErrUnknownSection
	}
	return sec, nil
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	return s.Order() >= 0
}

// Order returns the canonical position of the section, or -1 if unknown.
func (s Section) Order() int {
	for i, sec := range Sections {
		if sec == s {
			return i
		}
	}
	return -1
}

// AttemptStatus is the lifecycle state of an attempt.
// The states form a line; an attempt only ever moves forward.
type AttemptStatus string

// Attempt statuses, in lifecycle order.
const (
	AttemptStatusDraft      AttemptStatus = "draft"
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	AttemptStatusReviewed   AttemptStatus = "reviewed"
	AttemptStatusGraded     AttemptStatus = "graded"
)

var attemptStatusOrder = []AttemptStatus{
	AttemptStatusDraft,
	AttemptStatusInProgress,
	AttemptStatusSubmitted,
	AttemptStatusReviewed,
	AttemptStatusGraded,
}

// FinishedStatuses are the statuses that count towards progress.
var FinishedStatuses = []AttemptStatus{
	AttemptStatusSubmitted,
	AttemptStatusReviewed,
	AttemptStatusGraded,
}

// ParseAttemptStatus normalizes s and returns the matching AttemptStatus.
func ParseAttemptStatus(s string) (AttemptStatus, error) {
	st := AttemptStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrUnknownStatus
	}
	return st, nil
}

// Valid reports whether s is a known status.
func (s AttemptStatus) Valid() bool {
	return s.rank() >= 0
}

func (s AttemptStatus) rank() int {
	for i, st := range attemptStatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// IsFinished reports whether the attempt has been handed in.
func (s AttemptStatus) IsFinished() bool {
	return s.rank() >= AttemptStatusSubmitted.rank()
}

// CanAdvanceTo returns nil when next is strictly later than s.
func (s AttemptStatus) CanAdvanceTo(next AttemptStatus) error {
	if !s.Valid() || !next.Valid() {
		return ErrUnknownStatus
	}
	if next.rank() <= s.rank() {
		return &TransitionError{From: s, To: next}
	}
	return nil
}
