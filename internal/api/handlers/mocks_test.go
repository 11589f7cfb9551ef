package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/Bhupinder22500650/car-dealership-project-website/internal/models"
	"github.com/Bhupinder22500650/car-dealership-project-website/internal/services"
)

// --- Mocks ---

// MockSellerService
type MockSellerService struct {
	mock.Mock
}

func (m *MockSellerService) Register(ctx context.Context, in services.RegisterInput) (*models.Seller, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerService) Authenticate(ctx context.Context, username, password string) (*models.Seller, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerService) FindByID(ctx context.Context, sellerID string) (*models.Seller, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

// MockCarService
type MockCarService struct {
	mock.Mock
}

func (m *MockCarService) Create(ctx context.Context, sellerID string, in services.CarInput) (*models.Car, error) {
	args := m.Called(ctx, sellerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *MockCarService) FindByID(ctx context.Context, carID string) (*models.Car, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *MockCarService) Update(ctx context.Context, carID, sellerID string, in services.CarInput) (*models.Car, error) {
	args := m.Called(ctx, carID, sellerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *MockCarService) Delete(ctx context.Context, carID, sellerID string) error {
	args := m.Called(ctx, carID, sellerID)
	return args.Error(0)
}

func (m *MockCarService) AttachImage(ctx context.Context, carID, sellerID, imageRef string) error {
	args := m.Called(ctx, carID, sellerID, imageRef)
	return args.Error(0)
}

func (m *MockCarService) ListBySeller(ctx context.Context, sellerID string) ([]models.Car, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Car), args.Error(1)
}

func (m *MockCarService) Search(ctx context.Context, filter services.SearchFilter) ([]models.Car, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Car), args.Error(1)
}

// MockFeedbackService
type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, carID, sellerID, email, comment string) (*models.Feedback, error) {
	args := m.Called(ctx, carID, sellerID, email, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func (m *MockFeedbackService) ListByCar(ctx context.Context, carID string) ([]models.Feedback, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

// MockImageService
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Ingest(ctx context.Context, data []byte, declaredFilename string) (string, error) {
	args := m.Called(ctx, data, declaredFilename)
	return args.String(0), args.Error(1)
}

func (m *MockImageService) Remove(ctx context.Context, imageRef string) error {
	args := m.Called(ctx, imageRef)
	return args.Error(0)
}

// MockAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
