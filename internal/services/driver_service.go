package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

const (
	defaultDriverName   = "Driver"
	minDisplayNameRunes = 2
	maxDisplayNameRunes = 60
	maxBioRunes         = 500
	maxPhotoBytes       = 5 << 20
	publishTimeout      = 2 * time.Second
)

var photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID      uuid.UUID
	Role    models.Role
	IsAdmin bool
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

type DriverService struct {
	store     storage.IStorage
	resolver  *Resolver
	clock     Clock
	publisher StatusPublisher
	images    ImageStore
	log       logger.ILogger
}

func NewDriverService(store storage.IStorage, resolver *Resolver, clock Clock, publisher StatusPublisher, images ImageStore, log logger.ILogger) *DriverService {
	return &DriverService{
		store:     store,
		resolver:  resolver,
		clock:     clock,
		publisher: publisher,
		images:    images,
		log:       log,
	}
}

// ListPublic lists every visible driver for an anonymous viewer. Phones are
// never disclosed.
func (s *DriverService) ListPublic(ctx context.Context) ([]DriverView, error) {
	records, err := s.store.Driver().List(ctx, storage.DriverFilter{})
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	views := make([]DriverView, 0, len(records))
	for _, rec := range records {
		views = append(views, s.resolver.Resolve(rec, false, false))
	}
	SortDriverViews(views)
	return views, nil
}

// List lists drivers for an authenticated viewer, hiding anyone on either
// side of a block with them.
func (s *DriverService) List(ctx context.Context, viewerID uuid.UUID, search string, availableOnly bool) ([]DriverView, error) {
	records, err := s.store.Driver().List(ctx, storage.DriverFilter{ViewerID: &viewerID, Search: search})
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	views := make([]DriverView, 0, len(records))
	for _, rec := range records {
		view := s.resolver.Resolve(rec, true, false)
		if availableOnly && view.Status != models.DriverStatusAvailable {
			continue
		}
		views = append(views, view)
	}
	SortDriverViews(views)
	return views, nil
}

// Get returns one driver. A block in either direction reads as not found.
func (s *DriverService) Get(ctx context.Context, viewerID, driverID uuid.UUID) (DriverView, error) {
	blocked, err := s.store.Block().ExistsBetween(ctx, viewerID, driverID)
	if err != nil {
		return DriverView{}, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return DriverView{}, ErrDriverNotFound
	}

	rec, err := s.store.Driver().Get(ctx, driverID)
	if errors.Is(err, storage.ErrNotFound) {
		return DriverView{}, ErrDriverNotFound
	}
	if err != nil {
		return DriverView{}, fmt.Errorf("get driver: %w", err)
	}
	return s.resolver.Resolve(*rec, true, false), nil
}

// UpdateStatus stores a driver's own status, refreshes last_updated and
// announces the change. Announcing is best-effort and never fails the call.
func (s *DriverService) UpdateStatus(ctx context.Context, actor Actor, driverID uuid.UUID, status models.DriverStatusValue) (DriverStatusUpdate, error) {
	if err := s.authorizeOwn(actor, driverID); err != nil {
		return DriverStatusUpdate{}, err
	}
	if !status.Valid() {
		return DriverStatusUpdate{}, invalid("status", "must be available, busy, or offline")
	}

	if err := s.ensureProfile(ctx, driverID); err != nil {
		return DriverStatusUpdate{}, err
	}
	now := s.clock.Now()
	if err := s.store.Driver().UpsertStatus(ctx, driverID, status, now); err != nil {
		return DriverStatusUpdate{}, fmt.Errorf("update status: %w", err)
	}

	update := DriverStatusUpdate{DriverID: driverID, Status: status, LastUpdated: now}
	s.publish(ctx, update)
	return update, nil
}

func (s *DriverService) publish(ctx context.Context, update DriverStatusUpdate) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishStatus(pubCtx, update); err != nil {
		s.log.Warning("status broadcast failed",
			logger.String("driver_id", update.DriverID.String()),
			logger.Error(err))
	}
}

// ProfileInput is a full replacement of the editable profile fields. Blank
// optional fields are cleared.
type ProfileInput struct {
	DisplayName  string
	PhotoURL     *string
	CarMakeModel *string
	Bio          *string
}

func (s *DriverService) UpdateProfile(ctx context.Context, actor Actor, driverID uuid.UUID, in ProfileInput) error {
	if err := s.authorizeOwn(actor, driverID); err != nil {
		return err
	}

	name := strings.TrimSpace(in.DisplayName)
	if n := utf8.RuneCountInString(name); n < minDisplayNameRunes || n > maxDisplayNameRunes {
		return invalid("display_name", "must be between %d and %d characters", minDisplayNameRunes, maxDisplayNameRunes)
	}
	bio := optional(in.Bio)
	if bio != nil && utf8.RuneCountInString(*bio) > maxBioRunes {
		return invalid("bio", "must be %d characters or less", maxBioRunes)
	}

	if err := s.ensureProfile(ctx, driverID); err != nil {
		return err
	}
	err := s.store.Driver().UpdateProfile(ctx, driverID, storage.ProfileUpdate{
		DisplayName:  name,
		PhotoURL:     optional(in.PhotoURL),
		CarMakeModel: optional(in.CarMakeModel),
		Bio:          bio,
	}, s.clock.Now())
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *DriverService) SetAllowCalls(ctx context.Context, actor Actor, driverID uuid.UUID, allow bool) error {
	if err := s.authorizeOwn(actor, driverID); err != nil {
		return err
	}
	if err := s.ensureProfile(ctx, driverID); err != nil {
		return err
	}
	if err := s.store.Driver().SetAllowCalls(ctx, driverID, allow); err != nil {
		return fmt.Errorf("set allow_calls: %w", err)
	}
	return nil
}

// UploadPhoto stores a profile photo and points the profile at it.
func (s *DriverService) UploadPhoto(ctx context.Context, actor Actor, driverID uuid.UUID, file *multipart.FileHeader) (string, error) {
	if err := s.authorizeOwn(actor, driverID); err != nil {
		return "", err
	}
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	if file == nil {
		return "", invalid("photo", "is required")
	}
	if file.Size > maxPhotoBytes {
		return "", invalid("photo", "must be at most %d MB", maxPhotoBytes>>20)
	}
	if !photoExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return "", invalid("photo", "must be a jpg, png or webp image")
	}

	if err := s.ensureProfile(ctx, driverID); err != nil {
		return "", err
	}
	var previous *string
	if rec, err := s.store.Driver().Get(ctx, driverID); err == nil {
		previous = rec.PhotoURL
	}

	url, err := s.images.Upload(ctx, file, "drivers")
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	if err := s.store.Driver().SetPhotoURL(ctx, driverID, url, s.clock.Now()); err != nil {
		return "", fmt.Errorf("save photo url: %w", err)
	}

	if previous != nil && *previous != url {
		if err := s.images.Delete(ctx, *previous); err != nil {
			s.log.Warning("failed to delete old photo", logger.String("url", *previous), logger.Error(err))
		}
	}
	return url, nil
}

func (s *DriverService) authorizeOwn(actor Actor, driverID uuid.UUID) error {
	if !actor.Role.CanDrive() {
		return ErrRoleNotAllowed
	}
	if actor.ID != driverID {
		return ErrNotOwner
	}
	return nil
}

// ensureProfile creates a default profile for driver-capable accounts that
// never got one at signup, such as promoted admins.
func (s *DriverService) ensureProfile(ctx context.Context, driverID uuid.UUID) error {
	has, err := s.store.Driver().HasProfile(ctx, driverID)
	if err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if has {
		return nil
	}

	// Seed the aggregate from any reviews stored before the profile existed.
	stats, err := s.store.Review().Stats(ctx, driverID)
	if err != nil {
		return fmt.Errorf("review stats: %w", err)
	}

	now := s.clock.Now()
	profile := &models.DriverProfile{
		UserID:      driverID,
		DisplayName: defaultDriverName,
		AllowCalls:  true,
		RatingAvg:   averageStars(stats),
		RatingCount: int(stats.Count),
		UpdatedAt:   now,
	}
	status := &models.DriverStatus{DriverID: driverID, Status: models.DriverStatusOffline, LastUpdated: now}
	if err := s.store.Driver().CreateProfile(ctx, profile, status); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// optional trims s and maps blank to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
