package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"rijks-verifier/internal/core/domain"
	ports "rijks-verifier/internal/core/ports/output"
)

// MockCollectionAPI is a mock of CollectionAPI.
type MockCollectionAPI struct {
	mock.Mock
}

func (m *MockCollectionAPI) Get(ctx context.Context, url string) (*ports.APIResponse, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.APIResponse), args.Error(1)
}

// JSONResponse is a canned APIResponse with a JSON body.
func JSONResponse(status int, body string) *ports.APIResponse {
	return &ports.APIResponse{StatusCode: status, Body: []byte(body)}
}

// MockRunRepository is a mock of RunRepository.
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, report *domain.RunReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RunReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunReport), args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, filter ports.RunListFilter) ([]*domain.RunReport, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.RunReport), args.Int(1), args.Error(2)
}
