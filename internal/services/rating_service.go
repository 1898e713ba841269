package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

// ReviewNotifier is told about new reviews. It must not block for long and
// handles its own failures.
type ReviewNotifier interface {
	NotifyNewReview(ctx context.Context, driverID uuid.UUID, stars int)
}

type RatingService struct {
	store    storage.IStorage
	clock    Clock
	window   time.Duration
	notifier ReviewNotifier
	log      logger.ILogger
}

func NewRatingService(store storage.IStorage, clock Clock, window time.Duration, notifier ReviewNotifier, log logger.ILogger) *RatingService {
	return &RatingService{store: store, clock: clock, window: window, notifier: notifier, log: log}
}

type ReviewInput struct {
	DriverID    uuid.UUID
	PassengerID uuid.UUID
	Stars       int
	Comment     *string
}

// SubmitReview checks the review preconditions in order and, when all pass,
// stores the review and recomputes the driver's aggregate. Nothing is
// written on rejection.
func (s *RatingService) SubmitReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if in.Stars < models.MinStars || in.Stars > models.MaxStars {
		return nil, invalid("stars", "must be an integer between %d and %d", models.MinStars, models.MaxStars)
	}

	var comment *string
	if in.Comment != nil {
		if utf8.RuneCountInString(*in.Comment) > models.MaxCommentLength {
			return nil, invalid("comment", "must be %d characters or less", models.MaxCommentLength)
		}
		if trimmed := strings.TrimSpace(*in.Comment); trimmed != "" {
			comment = &trimmed
		}
	}

	if in.PassengerID == in.DriverID {
		return nil, ErrSelfReview
	}

	now := s.clock.Now()
	recent, err := s.store.Review().ExistsSince(ctx, in.DriverID, in.PassengerID, now.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("check review window: %w", err)
	}
	if recent {
		return nil, ErrReviewWindow
	}

	driver, err := s.store.User().GetByID(ctx, in.DriverID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}
	if !driver.Role.CanDrive() {
		return nil, ErrDriverNotFound
	}
	// Admins only become reviewable once they have a profile to carry the aggregate.
	hasProfile, err := s.store.Driver().HasProfile(ctx, in.DriverID)
	if err != nil {
		return nil, fmt.Errorf("check driver profile: %w", err)
	}
	if !hasProfile {
		return nil, ErrDriverNotFound
	}

	review := &models.Review{
		DriverID:    in.DriverID,
		PassengerID: in.PassengerID,
		Stars:       in.Stars,
		Comment:     comment,
		CreatedAt:   now,
	}
	if err := s.store.Review().Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if _, _, err := s.RecomputeRating(ctx, in.DriverID); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewReview(context.WithoutCancel(ctx), in.DriverID, in.Stars)
	}
	return review, nil
}

// DeleteReview removes a review and recomputes its driver's aggregate.
func (s *RatingService) DeleteReview(ctx context.Context, reviewID uuid.UUID) error {
	review, err := s.store.Review().Get(ctx, reviewID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}

	err = s.store.Review().Delete(ctx, reviewID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	_, _, err = s.RecomputeRating(ctx, review.DriverID)
	return err
}

// RecomputeRating rebuilds the driver's average and count from every stored
// review. With no reviews both are zero.
func (s *RatingService) RecomputeRating(ctx context.Context, driverID uuid.UUID) (float64, int, error) {
	stats, err := s.store.Review().Stats(ctx, driverID)
	if err != nil {
		return 0, 0, fmt.Errorf("review stats: %w", err)
	}

	avg := averageStars(stats)
	err = s.store.Driver().SetRating(ctx, driverID, avg, int(stats.Count))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, 0, ErrDriverNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("set rating: %w", err)
	}
	return avg, int(stats.Count), nil
}

// averageStars is the mean rounded to two decimals.
func averageStars(stats storage.ReviewStats) float64 {
	if stats.Count == 0 {
		return 0
	}
	return math.Round(float64(stats.Sum)/float64(stats.Count)*100) / 100
}

// ReviewView is a review as shown on a driver's page. The passenger is
// identified only by the last digits of their phone.
type ReviewView struct {
	ID             uuid.UUID `json:"id"`
	Stars          int       `json:"stars"`
	Comment        *string   `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
	PassengerLabel string    `json:"passenger_label"`
}

// ListReviews returns a driver's reviews newest first.
func (s *RatingService) ListReviews(ctx context.Context, driverID uuid.UUID) ([]ReviewView, error) {
	rows, err := s.store.Review().ListForDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	views := make([]ReviewView, 0, len(rows))
	for _, r := range rows {
		views = append(views, ReviewView{
			ID:             r.ID,
			Stars:          r.Stars,
			Comment:        r.Comment,
			CreatedAt:      r.CreatedAt,
			PassengerLabel: PassengerLabel(r.PassengerPhone),
		})
	}
	return views, nil
}

// PassengerLabel masks a phone number down to its last four digits.
func PassengerLabel(phone string) string {
	runes := []rune(phone)
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	return "Passenger …" + string(runes)
}
