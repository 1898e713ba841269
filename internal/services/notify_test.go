package services

import (
	"context"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type fakeMessaging struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeMessaging) Send(_ context.Context, msg *messaging.Message) (string, error) {
	f.sent = append(f.sent, msg)
	return "msg-id", f.err
}

func TestPushServiceNotifyNewReview(t *testing.T) {
	store := newTestStore(t)
	fcm := &fakeMessaging{}
	push := NewPushService(fcm, store, logger.NewNop())
	ctx := context.Background()

	driver := createUser(t, store, "+254744000001", models.RoleDriver)

	push.NotifyNewReview(ctx, driver.ID, 5)
	assert.Empty(t, fcm.sent, "no token registered")

	assert.True(t, IsValidation(push.RegisterToken(ctx, driver.ID, "")))
	require.NoError(t, push.RegisterToken(ctx, driver.ID, "device-1"))
	push.NotifyNewReview(ctx, driver.ID, 5)
	require.Len(t, fcm.sent, 1)
	assert.Equal(t, "device-1", fcm.sent[0].Token)
	assert.Equal(t, "5", fcm.sent[0].Data["stars"])
	assert.Equal(t, "new_review", fcm.sent[0].Data["type"])

	prefs, err := store.Preference().GetOrCreate(ctx, driver.ID)
	require.NoError(t, err)
	prefs.ReviewAlerts = false
	require.NoError(t, store.Preference().Save(ctx, prefs))

	push.NotifyNewReview(ctx, driver.ID, 4)
	assert.Len(t, fcm.sent, 1)

	require.NoError(t, push.RemoveToken(ctx, driver.ID))
	user, err := store.User().GetByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.Empty(t, user.FCMToken)
}

func TestPushServiceAlertsAdmins(t *testing.T) {
	store := newTestStore(t)
	fcm := &fakeMessaging{}
	push := NewPushService(fcm, store, logger.NewNop())
	ctx := context.Background()

	admin := createUser(t, store, "+254744000010", models.RoleAdmin)
	quietAdmin := createUser(t, store, "+254744000011", models.RoleAdmin)
	passenger := createUser(t, store, "+254744000012", models.RolePassenger)
	for _, u := range []*models.User{admin, quietAdmin, passenger} {
		require.NoError(t, push.RegisterToken(ctx, u.ID, "device-"+u.PhoneNumber))
	}
	prefs, err := store.Preference().GetOrCreate(ctx, quietAdmin.ID)
	require.NoError(t, err)
	prefs.ModerationAlerts = false
	require.NoError(t, store.Preference().Save(ctx, prefs))

	report := models.Report{ID: uuid.New(), Reason: models.ReportReasonHarassment}
	require.NoError(t, push.AlertNewReport(ctx, report))

	require.Len(t, fcm.sent, 1)
	assert.Equal(t, "device-"+admin.PhoneNumber, fcm.sent[0].Token)
	assert.Equal(t, report.ID.String(), fcm.sent[0].Data["reportId"])
}

func TestPushServiceDisabled(t *testing.T) {
	store := newTestStore(t)
	push := NewPushService(nil, store, logger.NewNop())
	assert.False(t, push.Enabled())

	u := createUser(t, store, "+254744000020", models.RoleAdmin)
	require.NoError(t, push.RegisterToken(context.Background(), u.ID, "device"))
	assert.NoError(t, push.AlertNewReport(context.Background(), models.Report{ID: uuid.New()}))
}

type fakeTelegram struct {
	to   tele.Recipient
	text string
	opts []interface{}
}

func (f *fakeTelegram) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.to = to
	f.text, _ = what.(string)
	f.opts = opts
	return &tele.Message{}, nil
}

func TestTelegramAlerter(t *testing.T) {
	sender := &fakeTelegram{}
	alerter := &TelegramAlerter{sender: sender, chat: &tele.Chat{ID: -100123}}

	details := "<script>bad</script> driver"
	report := models.Report{
		ID:           uuid.New(),
		ReporterID:   uuid.New(),
		TargetUserID: uuid.New(),
		Reason:       models.ReportReasonUnsafe,
		Details:      &details,
	}
	require.NoError(t, alerter.AlertNewReport(context.Background(), report))

	assert.Equal(t, "-100123", sender.to.Recipient())
	assert.Contains(t, sender.text, "<b>Reason:</b> unsafe")
	assert.Contains(t, sender.text, report.TargetUserID.String())
	assert.Contains(t, sender.text, "&lt;script&gt;")
	assert.False(t, strings.Contains(sender.text, "<script>"))
	assert.Contains(t, sender.opts, tele.ModeHTML)
}
