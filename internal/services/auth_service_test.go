package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jen9x/TapRide/internal/config"
	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type authFixture struct {
	store storage.IStorage
	clock *fakeClock
	sms   *fakeSMS
	svc   *AuthService
}

func newAuthFixture(t *testing.T, mutate func(*config.Config)) *authFixture {
	t.Helper()
	cfg := config.Config{
		OTPTTL:         10 * time.Minute,
		OTPMaxAttempts: 3,
		AdminPhones:    []string{"+254733999999"},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	f := &authFixture{store: newTestStore(t), clock: newFakeClock(), sms: newFakeSMS()}
	f.svc = NewAuthService(f.store, f.sms, fakeTokens{}, cfg, f.clock, logger.NewNop())
	return f
}

func (f *authFixture) sendCode(t *testing.T, phone string) string {
	t.Helper()
	dev, err := f.svc.SendOTP(context.Background(), phone)
	require.NoError(t, err)
	require.False(t, dev)
	code := f.sms.codes[phone]
	require.Len(t, code, 6)
	return code
}

func TestValidatePhone(t *testing.T) {
	for _, ok := range []string{"+254712345678", "+14155550123", "+4915112345678"} {
		assert.NoError(t, ValidatePhone(ok), ok)
	}
	for _, bad := range []string{"0712345678", "+0712345678", "254712345678", "+2547", "+2547123456789012", "+25471234567a"} {
		assert.True(t, IsValidation(ValidatePhone(bad)), bad)
	}
}

func TestSendOTPRejectsBadPhone(t *testing.T) {
	f := newAuthFixture(t, nil)
	_, err := f.svc.SendOTP(context.Background(), "0712345678")
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.sms.codes)
}

func TestSendOTPFailsWhenSMSFails(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.sms.err = errBoom
	_, err := f.svc.SendOTP(context.Background(), "+254733000001")
	assert.ErrorIs(t, err, errBoom)
}

func TestVerifyOTPSignsUpPassenger(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	phone := "+254733000002"
	code := f.sendCode(t, phone)

	_, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: code})
	assert.ErrorIs(t, err, ErrRoleRequired)

	res, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: code, Role: models.RolePassenger})
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, models.RolePassenger, res.User.Role)
	assert.True(t, res.User.PhoneVerified)
	assert.Equal(t, "token-"+res.User.ID.String(), res.Token)

	_, err = f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: code})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPSignsUpDriverWithProfile(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	phone := "+254733000003"
	code := f.sendCode(t, phone)

	res, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: code, Role: models.RoleDriver, DisplayName: " Juma "})
	require.NoError(t, err)

	rec, err := f.store.Driver().Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juma", rec.DisplayName)
	assert.Equal(t, models.DriverStatusOffline, rec.Status)
	assert.True(t, rec.AllowCalls)
}

type failingUsers struct {
	storage.IUserStorage
	err error
}

func (u *failingUsers) CreateDriver(ctx context.Context, user *models.User, profile *models.DriverProfile, status *models.DriverStatus) error {
	if u.err != nil {
		return u.err
	}
	return u.IUserStorage.CreateDriver(ctx, user, profile, status)
}

type failingSignupStore struct {
	storage.IStorage
	users *failingUsers
}

func (s failingSignupStore) User() storage.IUserStorage { return s.users }

func TestVerifyOTPFailedSignupKeepsCode(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	users := &failingUsers{IUserStorage: f.store.User(), err: errBoom}
	f.svc = NewAuthService(failingSignupStore{IStorage: f.store, users: users}, f.sms, fakeTokens{}, f.svc.cfg, f.clock, logger.NewNop())

	phone := "+254733000010"
	code := f.sendCode(t, phone)
	in := VerifyInput{PhoneNumber: phone, Code: code, Role: models.RoleDriver, DisplayName: "Kamau"}

	_, err := f.svc.VerifyOTP(ctx, in)
	assert.ErrorIs(t, err, errBoom)
	_, err = f.store.User().GetByPhone(ctx, phone)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	users.err = nil
	res, err := f.svc.VerifyOTP(ctx, in)
	require.NoError(t, err)
	rec, err := f.store.Driver().Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kamau", rec.DisplayName)

	_, err = f.svc.VerifyOTP(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPAdminPhone(t *testing.T) {
	f := newAuthFixture(t, nil)
	phone := "+254733999999"
	code := f.sendCode(t, phone)

	res, err := f.svc.VerifyOTP(context.Background(), VerifyInput{PhoneNumber: phone, Code: code, Role: models.RolePassenger})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.True(t, res.User.IsAdmin)
}

func TestVerifyOTPExistingUser(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	existing := createUser(t, f.store, "+254733000004", models.RoleDriver)

	code := f.sendCode(t, existing.PhoneNumber)
	res, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: existing.PhoneNumber, Code: code})
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, existing.ID, res.User.ID)

	require.NoError(t, f.store.User().SetBanned(ctx, existing.ID, true))
	code = f.sendCode(t, existing.PhoneNumber)
	_, err = f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: existing.PhoneNumber, Code: code})
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestVerifyOTPAttemptsAndExpiry(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	phone := "+254733000005"
	code := f.sendCode(t, phone)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < 3; i++ {
		_, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: wrong, Role: models.RolePassenger})
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: code, Role: models.RolePassenger})
	assert.ErrorIs(t, err, ErrOTPAttempts)

	code = f.sendCode(t, phone)
	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: code, Role: models.RolePassenger})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResendInvalidatesOlderCode(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	phone := "+254733000006"
	first := f.sendCode(t, phone)
	f.clock.Advance(time.Second)
	second := f.sendCode(t, phone)

	if first != second {
		_, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: first, Role: models.RolePassenger})
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: second, Role: models.RolePassenger})
	require.NoError(t, err)
}

func TestDevOTPBypass(t *testing.T) {
	f := newAuthFixture(t, func(c *config.Config) { c.DevOTPBypass = "123456" })
	ctx := context.Background()
	phone := "+254733000007"

	dev, err := f.svc.SendOTP(ctx, phone)
	require.NoError(t, err)
	assert.True(t, dev)
	assert.Empty(t, f.sms.codes)

	res, err := f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: "123456", Role: models.RoleDriver})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDriver, res.User.Role)

	_, err = f.svc.VerifyOTP(ctx, VerifyInput{PhoneNumber: phone, Code: "654321"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}
