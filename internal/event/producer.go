package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/breaker"
	pkgkafka "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/kafka"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

// Kafka topics for review domain events.
var (
	TopicReviewCreated  = pkgkafka.Topic("review", "created")
	TopicReviewUpdated  = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted  = pkgkafka.Topic("review", "deleted")
	TopicReviewReacted  = pkgkafka.Topic("review", "reacted")
	TopicReviewReported = pkgkafka.Topic("review", "reported")
)

// AggregateTypeProductReviews is the aggregate every review event belongs
// to. The aggregate id is the product id.
const AggregateTypeProductReviews = "product_reviews"

// SourceReviewService identifies events published by this service.
const SourceReviewService = "review-service"

// ReviewData is the payload of review.created and review.updated.
type ReviewData struct {
	ProductID  string  `json:"product_id"`
	ReviewID   string  `json:"review_id"`
	AuthorID   string  `json:"author_id"`
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment"`
	Date       string  `json:"date"`
}

// ReviewDeletedData is the payload of review.deleted.
type ReviewDeletedData struct {
	ProductID string `json:"product_id"`
	ReviewID  string `json:"review_id"`
	UserID    string `json:"user_id"`
}

// ReviewReactedData is the payload of review.reacted. Reaction is the
// user's reaction after the toggle, "none" when it was taken back.
type ReviewReactedData struct {
	ProductID string `json:"product_id"`
	ReviewID  string `json:"review_id"`
	UserID    string `json:"user_id"`
	Reaction  string `json:"reaction"`
	Likes     int    `json:"likes"`
	Dislikes  int    `json:"dislikes"`
}

// ReviewReportedData is the payload of review.reported.
type ReviewReportedData struct {
	ProductID string `json:"product_id"`
	ReviewID  string `json:"review_id"`
	Reports   int    `json:"reports"`
}

// Publisher announces review changes. Implementations never fail the
// caller: delivery problems are logged.
type Publisher interface {
	ReviewCreated(ctx context.Context, productID string, rv domain.Review)
	ReviewUpdated(ctx context.Context, productID string, rv domain.Review)
	ReviewDeleted(ctx context.Context, productID, reviewID, userID string)
	ReviewReacted(ctx context.Context, productID string, rv domain.Review, userID string, reaction domain.Reaction)
	ReviewReported(ctx context.Context, productID string, rv domain.Review)
}

// EventPublisher is the subset of *pkgkafka.Producer the Producer needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review events to Kafka through a circuit breaker, so a
// broker outage costs one fast rejection per mutation instead of a timeout.
type Producer struct {
	kafka   EventPublisher
	breaker *breaker.Breaker
	logger  *slog.Logger
}

// NewProducer creates a review event producer.
func NewProducer(kafka EventPublisher, cb *breaker.Breaker, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:   kafka,
		breaker: cb,
		logger:  logger,
	}
}

func reviewData(productID string, rv domain.Review) ReviewData {
	return ReviewData{
		ProductID:  productID,
		ReviewID:   rv.ID,
		AuthorID:   rv.AuthorID,
		AuthorName: rv.AuthorName,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
		Date:       rv.Date,
	}
}

// ReviewCreated publishes a review.created event.
func (p *Producer) ReviewCreated(ctx context.Context, productID string, rv domain.Review) {
	p.publish(ctx, TopicReviewCreated, productID, reviewData(productID, rv))
}

// ReviewUpdated publishes a review.updated event.
func (p *Producer) ReviewUpdated(ctx context.Context, productID string, rv domain.Review) {
	p.publish(ctx, TopicReviewUpdated, productID, reviewData(productID, rv))
}

// ReviewDeleted publishes a review.deleted event.
func (p *Producer) ReviewDeleted(ctx context.Context, productID, reviewID, userID string) {
	p.publish(ctx, TopicReviewDeleted, productID, ReviewDeletedData{
		ProductID: productID,
		ReviewID:  reviewID,
		UserID:    userID,
	})
}

// ReviewReacted publishes a review.reacted event.
func (p *Producer) ReviewReacted(ctx context.Context, productID string, rv domain.Review, userID string, reaction domain.Reaction) {
	p.publish(ctx, TopicReviewReacted, productID, ReviewReactedData{
		ProductID: productID,
		ReviewID:  rv.ID,
		UserID:    userID,
		Reaction:  reaction.String(),
		Likes:     rv.Likes(),
		Dislikes:  rv.Dislikes(),
	})
}

// ReviewReported publishes a review.reported event.
func (p *Producer) ReviewReported(ctx context.Context, productID string, rv domain.Review) {
	p.publish(ctx, TopicReviewReported, productID, ReviewReportedData{
		ProductID: productID,
		ReviewID:  rv.ID,
		Reports:   rv.Reports,
	})
}

func (p *Producer) publish(ctx context.Context, topic, productID string, data any) {
	if err := p.send(ctx, topic, productID, data); err != nil {
		logger.WithContext(ctx, p.logger).ErrorContext(ctx, "failed to publish review event",
			slog.String("topic", topic),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Producer) send(ctx context.Context, topic, productID string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, productID, AggregateTypeProductReviews, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	if id := logger.ClientIDFromContext(ctx); id != "" {
		ev.WithMetadata("client_id", id)
	}

	err = p.breaker.Do(ctx, func(ctx context.Context) error {
		return p.kafka.Publish(ctx, topic, ev)
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("product_id", productID),
	)
	return nil
}

// NoopPublisher discards every event. It is used when events are disabled
// and by the command line tool.
type NoopPublisher struct{}

func (NoopPublisher) ReviewCreated(context.Context, string, domain.Review) {}
func (NoopPublisher) ReviewUpdated(context.Context, string, domain.Review) {}
func (NoopPublisher) ReviewDeleted(context.Context, string, string, string) {}
func (NoopPublisher) ReviewReacted(context.Context, string, domain.Review, string, domain.Reaction) {
}
func (NoopPublisher) ReviewReported(context.Context, string, domain.Review) {}

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NoopPublisher{}
)
