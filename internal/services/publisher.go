package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/models"
)

// DriverStatusUpdate is the payload announced after a driver changes status.
type DriverStatusUpdate struct {
	DriverID    uuid.UUID                `json:"driver_id"`
	Status      models.DriverStatusValue `json:"status"`
	LastUpdated time.Time                `json:"last_updated"`
}

// StatusPublisher announces status changes. Delivery is best-effort.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, update DriverStatusUpdate) error
}

// FanoutPublisher publishes to every wrapped publisher and joins their errors.
type FanoutPublisher []StatusPublisher

func (f FanoutPublisher) PublishStatus(ctx context.Context, update DriverStatusUpdate) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishStatus(ctx, update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
