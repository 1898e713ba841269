package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

// MessagingClient is the subset of *messaging.Client used here.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// InitFirebase builds an FCM client from a service account file. An empty
// path disables push and returns a nil client.
func InitFirebase(ctx context.Context, serviceAccountPath string) (*messaging.Client, error) {
	if serviceAccountPath == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return client, nil
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title     string
	Body      string
	Data      map[string]interface{}
	ChannelID string
	Tag       string
}

// PushService sends FCM notifications and keeps device tokens on users.
type PushService struct {
	client MessagingClient
	store  storage.IStorage
	log    logger.ILogger
}

// NewPushService returns a push service. A nil client keeps token
// bookkeeping but skips every send.
func NewPushService(client MessagingClient, store storage.IStorage, log logger.ILogger) *PushService {
	return &PushService{client: client, store: store, log: log}
}

func (p *PushService) Enabled() bool { return p.client != nil }

// RegisterToken stores the device token used for pushes to user.
func (p *PushService) RegisterToken(ctx context.Context, userID uuid.UUID, token string) error {
	if token == "" {
		return invalid("fcm_token", "is required")
	}
	if err := p.store.User().SetFCMToken(ctx, userID, token); err != nil {
		return fmt.Errorf("save fcm token: %w", err)
	}
	return nil
}

// RemoveToken clears the user's device token.
func (p *PushService) RemoveToken(ctx context.Context, userID uuid.UUID) error {
	if err := p.store.User().SetFCMToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear fcm token: %w", err)
	}
	return nil
}

// PreferenceUpdate changes only the non-nil toggles.
type PreferenceUpdate struct {
	PushEnabled      *bool
	ReviewAlerts     *bool
	ModerationAlerts *bool
}

// Preferences returns the user's push preferences, creating the defaults on
// first read.
func (p *PushService) Preferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	prefs, err := p.store.Preference().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

func (p *PushService) UpdatePreferences(ctx context.Context, userID uuid.UUID, in PreferenceUpdate) (*models.NotificationPreference, error) {
	prefs, err := p.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.PushEnabled != nil {
		prefs.PushEnabled = *in.PushEnabled
	}
	if in.ReviewAlerts != nil {
		prefs.ReviewAlerts = *in.ReviewAlerts
	}
	if in.ModerationAlerts != nil {
		prefs.ModerationAlerts = *in.ModerationAlerts
	}
	if err := p.store.Preference().Save(ctx, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

// SendToUser pushes payload to the user's device if they have a token and
// their preferences allow kind.
func (p *PushService) SendToUser(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, payload NotificationPayload) error {
	if p.client == nil {
		return nil
	}

	prefs, err := p.store.Preference().GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if !prefs.Allows(kind) {
		return nil
	}

	user, err := p.store.User().GetByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.FCMToken == "" {
		return nil
	}

	msg := buildMessage(payload)
	msg.Token = user.FCMToken
	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

// NotifyNewReview tells a driver about a new review. Failures are logged.
func (p *PushService) NotifyNewReview(ctx context.Context, driverID uuid.UUID, stars int) {
	payload := NotificationPayload{
		Title:     "New review",
		Body:      fmt.Sprintf("A passenger rated you %d/5", stars),
		ChannelID: "tapride_reviews",
		Data: map[string]interface{}{
			"type":     "new_review",
			"driverId": driverID.String(),
			"stars":    stars,
		},
	}
	if err := p.SendToUser(ctx, driverID, models.NotificationKindReview, payload); err != nil {
		p.log.Warning("review push failed", logger.String("driver_id", driverID.String()), logger.Error(err))
	}
}

// AlertNewReport pushes a moderation alert to every admin who allows it.
func (p *PushService) AlertNewReport(ctx context.Context, report models.Report) error {
	if p.client == nil {
		return nil
	}
	admins, err := p.store.User().ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	payload := NotificationPayload{
		Title:     "New report",
		Body:      fmt.Sprintf("A user was reported for %s", report.Reason),
		ChannelID: "tapride_moderation",
		Tag:       "report_" + report.ID.String(),
		Data: map[string]interface{}{
			"type":     "new_report",
			"reportId": report.ID.String(),
			"reason":   string(report.Reason),
		},
	}

	var errs []error
	for _, admin := range admins {
		if err := p.SendToUser(ctx, admin.ID, models.NotificationKindModeration, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildMessage(payload NotificationPayload) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:    stringifyData(payload.Data),
		Android: getAndroidConfig(payload),
		APNS:    getAPNSConfig(),
	}
}

// stringifyData converts values to the string map FCM requires.
func stringifyData(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			out[key] = v
		case int, int64, float64, bool:
			out[key] = fmt.Sprintf("%v", v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[key] = string(raw)
		}
	}
	return out
}

func getAndroidConfig(payload NotificationPayload) *messaging.AndroidConfig {
	channelID := payload.ChannelID
	if channelID == "" {
		channelID = "tapride_default"
	}

	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 "default",
			ChannelID:             channelID,
			Priority:              messaging.PriorityHigh,
			DefaultSound:          true,
			Tag:                   payload.Tag,
			DefaultVibrateTimings: true,
		},
	}
}

func getAPNSConfig() *messaging.APNSConfig {
	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound: "default",
				Badge: &badge,
			},
		},
	}
}
