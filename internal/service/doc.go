// Package service contains the application use cases of the exam-practice
// engine. It orchestrates domain objects and the store interfaces (defined in
// internal/store) and owns transaction boundaries.
//
// Key components:
//
//   - CatalogService: packs, exams and questions, plus the per-system pack cards
//   - AttemptService: the attempt ledger. Numbering runs inside a transaction
//     that locks the (user, exam) pair and is retried a bounded number of times
//     when a concurrent writer takes the same number
//   - FeedbackService: attaching feedback to attempts and clearing references
//     when feedback is deleted
//   - ProgressService: per-pack progress cards built from finished attempts
//
// Services receive their stores, database handle, clock, logger and event
// emitter through constructor injection and keep no package-level state.
// Store and domain errors are wrapped in *ServiceError and stay matchable with
// errors.Is. Lost races surface as ErrConflict.
package service
