// Package domain contains the core business entities of the exam-practice
// platform: packs, section exams, questions, feedback and learner attempts,
// together with the closed enumerations (exam system, section, attempt status)
// and the rules that govern them. It has no knowledge of storage or transport.
package domain
