package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/predictor"
	"github.com/iyhunko/pricehawk/internal/repository"
	"github.com/iyhunko/pricehawk/internal/scraper"
	"github.com/iyhunko/pricehawk/internal/sqs"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByURL(ctx context.Context, productURL string) (*model.Product, error) {
	args := m.Called(ctx, productURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

// MockIngestRepository is a mock implementation of repository.IngestRepository
type MockIngestRepository struct {
	mock.Mock
}

func (m *MockIngestRepository) RecordObservation(ctx context.Context, product *model.Product, price float64, meta *model.Metadata) (*repository.Recorded, error) {
	args := m.Called(ctx, product, price, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Recorded), args.Error(1)
}

func (m *MockIngestRepository) ProductWithHistory(ctx context.Context, id uuid.UUID) (*model.Product, []*model.PriceObservation, error) {
	args := m.Called(ctx, id)
	var product *model.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*model.Product)
	}
	var history []*model.PriceObservation
	if args.Get(1) != nil {
		history = args.Get(1).([]*model.PriceObservation)
	}
	return product, history, args.Error(2)
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventRepository) ListPending(ctx context.Context, limit int) ([]*model.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error {
	args := m.Called(ctx, eventID, status)
	return args.Error(0)
}

// MockPublisher is a mock implementation of the SQS publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPriceMessage(ctx context.Context, msg sqs.PriceMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockScraper is a mock implementation of scraper.Scraper
type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, productURL string) (*scraper.Snapshot, error) {
	args := m.Called(ctx, productURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scraper.Snapshot), args.Error(1)
}

// MockPredictor is a mock implementation of predictor.Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, history []model.PricePoint) (*predictor.Prediction, error) {
	args := m.Called(ctx, history)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*predictor.Prediction), args.Error(1)
}
