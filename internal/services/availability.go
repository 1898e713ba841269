package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/models"
)

// EffectiveStatus decays a stored "available" to "offline" once more than
// threshold has passed since lastUpdated. Busy and offline pass through.
// Exactly threshold old still counts as available.
func EffectiveStatus(stored models.DriverStatusValue, lastUpdated, now time.Time, threshold time.Duration) models.DriverStatusValue {
	if stored != models.DriverStatusAvailable {
		return stored
	}
	if now.Sub(lastUpdated) > threshold {
		return models.DriverStatusOffline
	}
	return models.DriverStatusAvailable
}

// DriverView is a driver as one viewer sees them. PhoneNumber is always
// serialised and is null unless disclosure is allowed.
type DriverView struct {
	ID           uuid.UUID                `json:"id"`
	DisplayName  string                   `json:"display_name"`
	PhotoURL     *string                  `json:"photo_url"`
	CarMakeModel *string                  `json:"car_make_model"`
	Bio          *string                  `json:"bio"`
	AllowCalls   bool                     `json:"allow_calls"`
	RatingAvg    float64                  `json:"rating_avg"`
	RatingCount  int                      `json:"rating_count"`
	Status       models.DriverStatusValue `json:"status"`
	PhoneNumber  *string                  `json:"phone_number"`
}

// Resolver turns stored driver rows into viewer-specific views.
type Resolver struct {
	clock     Clock
	threshold time.Duration
}

func NewResolver(clock Clock, threshold time.Duration) *Resolver {
	return &Resolver{clock: clock, threshold: threshold}
}

func (r *Resolver) Threshold() time.Duration { return r.threshold }

// Resolve computes the effective status and decides phone disclosure. The
// phone is revealed only to an authenticated viewer with no block in either
// direction, and only while the driver is effectively available with calls
// allowed.
func (r *Resolver) Resolve(rec models.DriverRecord, authenticated, blocked bool) DriverView {
	return ResolveDriverView(rec, authenticated, blocked, r.clock.Now(), r.threshold)
}

// ResolveDriverView is Resolve with an explicit clock reading.
func ResolveDriverView(rec models.DriverRecord, authenticated, blocked bool, now time.Time, threshold time.Duration) DriverView {
	status := EffectiveStatus(rec.Status, rec.LastUpdated, now, threshold)

	view := DriverView{
		ID:           rec.ID,
		DisplayName:  rec.DisplayName,
		PhotoURL:     rec.PhotoURL,
		CarMakeModel: rec.CarMakeModel,
		Bio:          rec.Bio,
		AllowCalls:   rec.AllowCalls,
		RatingAvg:    rec.RatingAvg,
		RatingCount:  rec.RatingCount,
		Status:       status,
	}
	if authenticated && !blocked && status == models.DriverStatusAvailable && rec.AllowCalls {
		phone := rec.PhoneNumber
		view.PhoneNumber = &phone
	}
	return view
}

// SortDriverViews orders by rating descending, then display name ascending,
// then id so equal rows never swap between calls.
func SortDriverViews(views []DriverView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.RatingAvg != b.RatingAvg {
			return a.RatingAvg > b.RatingAvg
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ID.String() < b.ID.String()
	})
}
