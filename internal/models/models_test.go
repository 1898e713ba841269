package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role      Role
		valid     bool
		canDrive  bool
		canReview bool
		signup    bool
	}{
		{RolePassenger, true, false, true, true},
		{RoleDriver, true, true, false, true},
		{RoleAdmin, true, true, true, false},
		{Role("rider"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.canDrive, tt.role.CanDrive())
			assert.Equal(t, tt.canReview, tt.role.CanReview())
			assert.Equal(t, tt.signup, tt.role.SignupRole())
		})
	}
}

func TestDriverStatusValueValid(t *testing.T) {
	assert.True(t, DriverStatusAvailable.Valid())
	assert.True(t, DriverStatusBusy.Valid())
	assert.True(t, DriverStatusOffline.Valid())
	assert.False(t, DriverStatusValue("online").Valid())
}

func TestReportEnums(t *testing.T) {
	assert.True(t, ReportReasonUnsafe.Valid())
	assert.False(t, ReportReason("rude").Valid())
	assert.True(t, ReportStatusResolved.Valid())
	assert.False(t, ReportStatus("closed").Valid())
}

func TestOTPCode(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	otp := &OTP{ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, otp.SetCode("482913"))

	assert.NotEqual(t, "482913", otp.CodeHash)
	assert.True(t, otp.Matches("482913"))
	assert.False(t, otp.Matches("482914"))

	assert.True(t, otp.IsValid(now))
	assert.False(t, otp.IsValid(now.Add(10*time.Minute)))

	otp.Used = true
	assert.False(t, otp.IsValid(now))
}

func TestNotificationPreferenceAllows(t *testing.T) {
	prefs := DefaultPreferences(uuid.New())
	assert.True(t, prefs.Allows(NotificationKindReview))

	prefs.ReviewAlerts = false
	assert.False(t, prefs.Allows(NotificationKindReview))
	assert.True(t, prefs.Allows(NotificationKindModeration))

	prefs.PushEnabled = false
	assert.False(t, prefs.Allows(NotificationKindModeration))
}
