package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type ratingFixture struct {
	store    storage.IStorage
	clock    *fakeClock
	notifier *recordingNotifier
	svc      *RatingService
}

func newRatingFixture(t *testing.T) *ratingFixture {
	t.Helper()
	f := &ratingFixture{store: newTestStore(t), clock: newFakeClock(), notifier: &recordingNotifier{}}
	f.svc = NewRatingService(f.store, f.clock, 24*time.Hour, f.notifier, logger.NewNop())
	return f
}

func (f *ratingFixture) rating(t *testing.T, driverID uuid.UUID) (float64, int) {
	t.Helper()
	rec, err := f.store.Driver().Get(context.Background(), driverID)
	require.NoError(t, err)
	return rec.RatingAvg, rec.RatingCount
}

func TestRatingAggregateFollowsInsertsAndDeletes(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	driver := createDriver(t, f.store, "+254711000001", "Baraka", models.DriverStatusAvailable, epoch)

	var reviews []*models.Review
	for i, stars := range []int{5, 3, 4} {
		p := createUser(t, f.store, "+25471100010"+string(rune('0'+i)), models.RolePassenger)
		r, err := f.svc.SubmitReview(ctx, ReviewInput{DriverID: driver.ID, PassengerID: p.ID, Stars: stars})
		require.NoError(t, err)
		reviews = append(reviews, r)
	}

	avg, count := f.rating(t, driver.ID)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 3, count)

	require.NoError(t, f.svc.DeleteReview(ctx, reviews[1].ID))
	avg, count = f.rating(t, driver.ID)
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 2, count)

	require.NoError(t, f.svc.DeleteReview(ctx, reviews[0].ID))
	require.NoError(t, f.svc.DeleteReview(ctx, reviews[2].ID))
	avg, count = f.rating(t, driver.ID)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, count)

	assert.ErrorIs(t, f.svc.DeleteReview(ctx, reviews[0].ID), ErrReviewNotFound)
	assert.Len(t, f.notifier.calls, 3)
}

func TestRecomputeRatingIsIdempotentAndRounds(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	driver := createDriver(t, f.store, "+254711000002", "Amina", models.DriverStatusAvailable, epoch)

	for i, stars := range []int{5, 4, 4} {
		p := createUser(t, f.store, "+25471100020"+string(rune('0'+i)), models.RolePassenger)
		_, err := f.svc.SubmitReview(ctx, ReviewInput{DriverID: driver.ID, PassengerID: p.ID, Stars: stars})
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		avg, count, err := f.svc.RecomputeRating(ctx, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, 4.33, avg)
		assert.Equal(t, 3, count)
	}
}

func TestReviewWindow(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	driver := createDriver(t, f.store, "+254711000003", "Chege", models.DriverStatusAvailable, epoch)
	passenger := createUser(t, f.store, "+254711000300", models.RolePassenger)
	in := ReviewInput{DriverID: driver.ID, PassengerID: passenger.ID, Stars: 5}

	_, err := f.svc.SubmitReview(ctx, in)
	require.NoError(t, err)

	f.clock.Advance(23*time.Hour + 59*time.Minute)
	_, err = f.svc.SubmitReview(ctx, in)
	assert.ErrorIs(t, err, ErrReviewWindow)
	assert.ErrorIs(t, err, ErrRateLimited)

	_, count := f.rating(t, driver.ID)
	assert.Equal(t, 1, count)

	// Exactly one window later the earlier review no longer counts.
	f.clock.Advance(time.Minute)
	_, err = f.svc.SubmitReview(ctx, in)
	require.NoError(t, err)

	_, count = f.rating(t, driver.ID)
	assert.Equal(t, 2, count)

	f.clock.Advance(24*time.Hour - time.Second)
	_, err = f.svc.SubmitReview(ctx, in)
	assert.ErrorIs(t, err, ErrReviewWindow)
}

func TestSubmitReviewPreconditions(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	driver := createDriver(t, f.store, "+254711000004", "Wanjiru", models.DriverStatusAvailable, epoch)
	passenger := createUser(t, f.store, "+254711000400", models.RolePassenger)
	other := createUser(t, f.store, "+254711000401", models.RolePassenger)

	long := strings.Repeat("x", models.MaxCommentLength+1)
	exact := strings.Repeat("é", models.MaxCommentLength)

	tests := []struct {
		name  string
		in    ReviewInput
		check func(t *testing.T, err error)
	}{
		{"zero stars", ReviewInput{DriverID: driver.ID, PassengerID: passenger.ID, Stars: 0}, func(t *testing.T, err error) { assert.True(t, IsValidation(err)) }},
		{"six stars", ReviewInput{DriverID: driver.ID, PassengerID: passenger.ID, Stars: 6}, func(t *testing.T, err error) { assert.True(t, IsValidation(err)) }},
		{"long comment", ReviewInput{DriverID: driver.ID, PassengerID: passenger.ID, Stars: 4, Comment: &long}, func(t *testing.T, err error) { assert.True(t, IsValidation(err)) }},
		{"self review", ReviewInput{DriverID: driver.ID, PassengerID: driver.ID, Stars: 5}, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrSelfReview) }},
		{"unknown driver", ReviewInput{DriverID: uuid.New(), PassengerID: passenger.ID, Stars: 5}, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrDriverNotFound) }},
		{"target is a passenger", ReviewInput{DriverID: other.ID, PassengerID: passenger.ID, Stars: 5}, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrDriverNotFound) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitReview(ctx, tt.in)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	_, count := f.rating(t, driver.ID)
	assert.Equal(t, 0, count)
	assert.Empty(t, f.notifier.calls)

	review, err := f.svc.SubmitReview(ctx, ReviewInput{DriverID: driver.ID, PassengerID: passenger.ID, Stars: 4, Comment: &exact})
	require.NoError(t, err)
	require.NotNil(t, review.Comment)
	assert.Equal(t, exact, *review.Comment)
}

func TestSelfReviewRejectedEvenForAdmins(t *testing.T) {
	f := newRatingFixture(t)
	admin := createUser(t, f.store, "+254711000005", models.RoleAdmin)

	_, err := f.svc.SubmitReview(context.Background(), ReviewInput{DriverID: admin.ID, PassengerID: admin.ID, Stars: 5})
	assert.ErrorIs(t, err, ErrSelfReview)
}

func TestAdminReviewableOnlyWithProfile(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	admin := createUser(t, f.store, "+254711000007", models.RoleAdmin)
	passenger := createUser(t, f.store, "+254711000700", models.RolePassenger)
	in := ReviewInput{DriverID: admin.ID, PassengerID: passenger.ID, Stars: 5}

	_, err := f.svc.SubmitReview(ctx, in)
	assert.ErrorIs(t, err, ErrDriverNotFound)

	stats, err := f.store.Review().Stats(ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.Count)

	drivers := NewDriverService(f.store, NewResolver(f.clock, time.Hour), f.clock, &recordingPublisher{}, &fakeImages{}, logger.NewNop())
	_, err = drivers.UpdateStatus(ctx, Actor{ID: admin.ID, Role: models.RoleAdmin, IsAdmin: true}, admin.ID, models.DriverStatusAvailable)
	require.NoError(t, err)

	_, err = f.svc.SubmitReview(ctx, in)
	require.NoError(t, err)

	stats, err = f.store.Review().Stats(ctx, admin.ID)
	require.NoError(t, err)
	avg, count := f.rating(t, admin.ID)
	assert.Equal(t, int(stats.Count), count)
	assert.Equal(t, 1, count)
	assert.Equal(t, 5.0, avg)
}

func TestRecomputeRatingWithoutProfile(t *testing.T) {
	f := newRatingFixture(t)
	admin := createUser(t, f.store, "+254711000008", models.RoleAdmin)

	_, _, err := f.svc.RecomputeRating(context.Background(), admin.ID)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestListReviewsMasksPassenger(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()
	driver := createDriver(t, f.store, "+254711000006", "Mutua", models.DriverStatusAvailable, epoch)
	first := createUser(t, f.store, "+254711009876", models.RolePassenger)
	second := createUser(t, f.store, "+254711001234", models.RolePassenger)

	blank := "   "
	_, err := f.svc.SubmitReview(ctx, ReviewInput{DriverID: driver.ID, PassengerID: first.ID, Stars: 3, Comment: &blank})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.SubmitReview(ctx, ReviewInput{DriverID: driver.ID, PassengerID: second.ID, Stars: 5})
	require.NoError(t, err)

	views, err := f.svc.ListReviews(ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Passenger …1234", views[0].PassengerLabel)
	assert.Equal(t, "Passenger …9876", views[1].PassengerLabel)
	assert.Nil(t, views[1].Comment)
}

func TestPassengerLabel(t *testing.T) {
	assert.Equal(t, "Passenger …5678", PassengerLabel("+254712345678"))
	assert.Equal(t, "Passenger …12", PassengerLabel("12"))
}
