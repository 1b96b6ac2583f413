package testhelpers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/query"
)

// MockCandidateStore is a mock implementation of the candidate query surface
type MockCandidateStore struct {
	mock.Mock
}

func (m *MockCandidateStore) SearchCandidates(ctx context.Context, q query.Query) ([]model.FlavorItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FlavorItem), args.Error(1)
}

// MockKeywordCatalog is a mock implementation of the keyword catalog read
type MockKeywordCatalog struct {
	mock.Mock
}

func (m *MockKeywordCatalog) ListTasteKeywords(ctx context.Context) ([]model.TasteKeyword, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TasteKeyword), args.Error(1)
}

// MockImageResolver is a mock implementation of image URL resolution
type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) ResolveImageURL(ctx context.Context, stored string) (string, error) {
	args := m.Called(ctx, stored)
	return args.String(0), args.Error(1)
}
