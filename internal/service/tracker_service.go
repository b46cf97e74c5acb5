package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/pricehawk/internal/analytics"
	"github.com/iyhunko/pricehawk/internal/apperr"
	"github.com/iyhunko/pricehawk/internal/metrics"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/predictor"
	"github.com/iyhunko/pricehawk/internal/repository"
	"github.com/iyhunko/pricehawk/internal/scraper"
)

const (
	DefaultScrapeTimeout  = 30 * time.Second
	DefaultPredictTimeout = 10 * time.Second
)

// Options bounds the calls to external collaborators.
type Options struct {
	ScrapeTimeout  time.Duration
	PredictTimeout time.Duration
}

// TrackerService runs ingestion and the read side of tracked products.
type TrackerService struct {
	products  repository.ProductRepository
	ingest    repository.IngestRepository
	scraper   scraper.Scraper
	predictor predictor.Predictor
	opts      Options
}

// NewTrackerService wires the service. pred may be nil, in which case analytics carry no prediction.
func NewTrackerService(
	products repository.ProductRepository,
	ingest repository.IngestRepository,
	scr scraper.Scraper,
	pred predictor.Predictor,
	opts Options,
) *TrackerService {
	if opts.ScrapeTimeout <= 0 {
		opts.ScrapeTimeout = DefaultScrapeTimeout
	}
	if opts.PredictTimeout <= 0 {
		opts.PredictTimeout = DefaultPredictTimeout
	}
	return &TrackerService{
		products:  products,
		ingest:    ingest,
		scraper:   scr,
		predictor: pred,
		opts:      opts,
	}
}

// IngestResult is returned by a successful Ingest.
type IngestResult struct {
	Product  *model.Product
	Created  bool
	Redirect string
}

// ProductDetail is a product with its ascending price history.
type ProductDetail struct {
	Product *model.Product
	History []*model.PriceObservation
}

// ProductPath is the navigation target of a product detail view.
func ProductPath(id uuid.UUID) string {
	return "/products/" + id.String()
}

// ResolveOrCreate returns the stored product for the URL, or a new unsaved one.
// The new product is only persisted when its first observation commits.
func (s *TrackerService) ResolveOrCreate(ctx context.Context, rawURL string) (*model.Product, error) {
	productURL, err := model.ParseProductURL(rawURL)
	if err != nil {
		return nil, apperr.InvalidURL(err)
	}

	product, err := s.products.FindByID(ctx, model.IdentityFromURL(productURL))
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewProduct(productURL), nil
	}
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "failed to resolve product", err)
	}
	return product, nil
}

// Ingest scrapes the URL and records the observed price.
// Nothing is written unless the scrape succeeds with a valid price.
func (s *TrackerService) Ingest(ctx context.Context, rawURL string) (*IngestResult, error) {
	result, err := s.ingestURL(ctx, rawURL)
	if err != nil {
		metrics.Ingestions.WithLabelValues(ingestResult(err)).Inc()
		slog.Warn("ingestion failed",
			slog.String("url", rawURL),
			slog.String("kind", string(apperr.KindOf(err))),
			slog.Any("err", err))
		return nil, err
	}

	if result.Created {
		metrics.ProductsCreated.Inc()
		metrics.Ingestions.WithLabelValues(metrics.ResultCreated).Inc()
	} else {
		metrics.Ingestions.WithLabelValues(metrics.ResultUpdated).Inc()
	}
	if result.Product.IsAtAllTimeLow() {
		metrics.AllTimeLows.Inc()
	}
	return result, nil
}

func (s *TrackerService) ingestURL(ctx context.Context, rawURL string) (*IngestResult, error) {
	product, err := s.ResolveOrCreate(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.scrape(ctx, product.URL)
	if err != nil {
		return nil, apperr.ScrapeFailed(err)
	}
	if err := model.ValidatePositivePrice(snapshot.Price); err != nil {
		return nil, apperr.InvalidObservation(err)
	}

	recorded, err := s.ingest.RecordObservation(ctx, product, snapshot.Price, snapshot.Metadata())
	if err != nil {
		if errors.Is(err, model.ErrInvalidObservation) {
			return nil, apperr.InvalidObservation(err)
		}
		return nil, apperr.New(apperr.KindInternal, "failed to record observation", err)
	}

	slog.Info("price recorded",
		slog.String("product_id", recorded.Product.ID.String()),
		slog.Float64("price", recorded.Observation.Price),
		slog.Bool("created", recorded.Created),
		slog.Bool("all_time_low", recorded.Product.IsAtAllTimeLow()))

	return &IngestResult{
		Product:  recorded.Product,
		Created:  recorded.Created,
		Redirect: ProductPath(recorded.Product.ID),
	}, nil
}

func (s *TrackerService) scrape(ctx context.Context, productURL string) (*scraper.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ScrapeTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := s.scraper.Scrape(ctx, productURL)
	metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", productURL, err)
	}
	return snapshot, nil
}

func ingestResult(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidURL:
		return metrics.ResultInvalidURL
	case apperr.KindScrapeFailed:
		return metrics.ResultScrapeFailed
	case apperr.KindInvalidObservation:
		return metrics.ResultInvalidObservation
	default:
		return metrics.ResultError
	}
}

// GetProduct returns the product with its ascending history, both read from one snapshot.
func (s *TrackerService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, history, err := s.ingest.ProductWithHistory(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(err)
	}
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "failed to load product", err)
	}
	return &ProductDetail{Product: product, History: history}, nil
}

// ListProducts returns tracked products, most recently updated first.
func (s *TrackerService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	products, err := s.products.List(ctx, query)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "failed to list products", err)
	}
	return products, nil
}

// Analytics derives the analytics snapshot of a product.
// Prediction problems never fail the read; the snapshot just carries no prediction.
func (s *TrackerService) Analytics(ctx context.Context, id uuid.UUID, opts analytics.ChartOptions) (*analytics.Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return nil, apperr.InvalidArgument(err)
	}

	detail, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	prediction := s.predict(ctx, detail.Product.ID, detail.History)
	return analytics.Derive(detail.Product, detail.History, prediction, opts), nil
}

func (s *TrackerService) predict(ctx context.Context, productID uuid.UUID, history []*model.PriceObservation) *predictor.Prediction {
	if s.predictor == nil || len(history) < analytics.MinPredictionHistory {
		metrics.Predictions.WithLabelValues("skipped").Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.PredictTimeout)
	defer cancel()

	prediction, err := s.predictor.Predict(ctx, model.Points(history))
	switch {
	case errors.Is(err, predictor.ErrInsufficientData):
		metrics.Predictions.WithLabelValues("insufficient_data").Inc()
		slog.Info("prediction unavailable", slog.String("product_id", productID.String()), slog.Any("err", err))
		return nil
	case err != nil:
		metrics.Predictions.WithLabelValues("error").Inc()
		slog.Warn("prediction failed", slog.String("product_id", productID.String()), slog.Any("err", err))
		return nil
	}
	metrics.Predictions.WithLabelValues("ok").Inc()
	return prediction
}
