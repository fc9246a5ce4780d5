package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/domain/progress"
	"github.com/phrazzld/examprep-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockAttemptStore mocks the store.AttemptStore interface.
type MockAttemptStore struct {
	mock.Mock
}

func (m *MockAttemptStore) LockPair(ctx context.Context, userID uuid.UUID, examID int64) error {
	return m.Called(ctx, userID, examID).Error(0)
}

func (m *MockAttemptStore) NextAttemptNo(ctx context.Context, userID uuid.UUID, examID int64) (int, error) {
	args := m.Called(ctx, userID, examID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptStore) Create(ctx context.Context, attempt *domain.Attempt) error {
	return m.Called(ctx, attempt).Error(0)
}

func (m *MockAttemptStore) GetByID(ctx context.Context, id int64) (*domain.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attempt), args.Error(1)
}

func (m *MockAttemptStore) GetOwner(ctx context.Context, id int64) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAttemptStore) ListForUserExam(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error) {
	args := m.Called(ctx, userID, examID)
	return args.Get(0).([]*domain.Attempt), args.Error(1)
}

func (m *MockAttemptStore) UpdateStatus(ctx context.Context, id int64, from, to domain.AttemptStatus, at time.Time) error {
	return m.Called(ctx, id, from, to, at).Error(0)
}

func (m *MockAttemptStore) UpdateResponse(ctx context.Context, id int64, response domain.Response, at time.Time) error {
	return m.Called(ctx, id, response, at).Error(0)
}

func (m *MockAttemptStore) SetFeedback(ctx context.Context, id int64, feedbackID int64, at time.Time) error {
	return m.Called(ctx, id, feedbackID, at).Error(0)
}

func (m *MockAttemptStore) ClearFeedback(ctx context.Context, feedbackID int64, at time.Time) (int64, error) {
	args := m.Called(ctx, feedbackID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptStore) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockAttemptStore) ListFinishedForProgress(ctx context.Context, userID uuid.UUID) ([]progress.Entry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]progress.Entry), args.Error(1)
}

func (m *MockAttemptStore) WithTx(_ *sql.Tx) store.AttemptStore {
	return m
}

// MockCatalogStore mocks the exam and pack lookups of store.CatalogStore. Methods the
// attempt ledger never calls are left to the embedded nil interface.
type MockCatalogStore struct {
	store.CatalogStore
	mock.Mock
}

func (m *MockCatalogStore) GetExam(ctx context.Context, id int64) (*domain.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exam), args.Error(1)
}

func (m *MockCatalogStore) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pack), args.Error(1)
}

func (m *MockCatalogStore) WithTx(_ *sql.Tx) store.CatalogStore {
	return m
}
