package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Jen9x/TapRide/internal/config"
	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
	"github.com/Jen9x/TapRide/pkg/utils"
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// ErrRoleRequired is returned when an unknown phone verifies without
// choosing a signup role. The code stays usable for the retry.
var ErrRoleRequired = &ValidationError{Field: "role", Message: `new user: role ("driver" or "passenger") is required`}

type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string, ttl time.Duration) error
}

type TokenIssuer interface {
	GenerateToken(user *models.User, now time.Time) (string, error)
}

type AuthService struct {
	store  storage.IStorage
	sms    SMSSender
	tokens TokenIssuer
	cfg    config.Config
	clock  Clock
	log    logger.ILogger
}

func NewAuthService(store storage.IStorage, sms SMSSender, tokens TokenIssuer, cfg config.Config, clock Clock, log logger.ILogger) *AuthService {
	return &AuthService{store: store, sms: sms, tokens: tokens, cfg: cfg, clock: clock, log: log}
}

// ValidatePhone checks the E.164 format.
func ValidatePhone(phone string) error {
	if !e164.MatchString(phone) {
		return invalid("phone_number", "must be in E.164 format, e.g. +254712345678")
	}
	return nil
}

// SendOTP issues a fresh code for phone, invalidating older ones. It reports
// dev mode when DEV_OTP_BYPASS is set, in which case nothing is sent.
func (s *AuthService) SendOTP(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if err := ValidatePhone(phone); err != nil {
		return false, err
	}
	if s.cfg.DevOTPBypass != "" {
		s.log.Warning("DEV_OTP_BYPASS active, no SMS sent", logger.String("phone", phone))
		return true, nil
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	otp := &models.OTP{PhoneNumber: phone, ExpiresAt: now.Add(s.cfg.OTPTTL), CreatedAt: now}
	if err := otp.SetCode(code); err != nil {
		return false, fmt.Errorf("hash otp: %w", err)
	}
	if err := s.store.OTP().InvalidateActive(ctx, phone); err != nil {
		return false, fmt.Errorf("invalidate otps: %w", err)
	}
	if err := s.store.OTP().Create(ctx, otp); err != nil {
		return false, fmt.Errorf("create otp: %w", err)
	}

	if err := s.sms.SendOTP(ctx, phone, code, s.cfg.OTPTTL); err != nil {
		return false, fmt.Errorf("send otp sms: %w", err)
	}
	return false, nil
}

type VerifyInput struct {
	PhoneNumber string
	Code        string
	Role        models.Role
	DisplayName string
}

type LoginResult struct {
	Token     string
	User      *models.User
	IsNewUser bool
}

// VerifyOTP checks the code and logs the user in, signing them up first when
// the phone is unknown.
func (s *AuthService) VerifyOTP(ctx context.Context, in VerifyInput) (*LoginResult, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, invalid("code", "is required")
	}

	now := s.clock.Now()
	var pending *models.OTP
	if s.cfg.DevOTPBypass == "" || code != s.cfg.DevOTPBypass {
		otp, err := s.checkCode(ctx, phone, code, now)
		if err != nil {
			return nil, err
		}
		pending = otp
	}

	user, err := s.store.User().GetByPhone(ctx, phone)
	isNew := errors.Is(err, storage.ErrNotFound)
	if err != nil && !isNew {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var signup *models.User
	displayName := strings.TrimSpace(in.DisplayName)
	if isNew {
		signup, err = s.newUser(phone, in.Role, displayName, now)
		if err != nil {
			return nil, err
		}
	} else if user.IsBanned {
		return nil, ErrAccountSuspended
	}

	if isNew {
		user = signup
		if err := s.createUser(ctx, user, displayName, now); err != nil {
			return nil, err
		}
	} else if !user.PhoneVerified {
		if err := s.store.User().MarkPhoneVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		user.PhoneVerified = true
	}

	// Spend the code only after the account exists.
	if pending != nil {
		pending.Used = true
		if err := s.store.OTP().Save(ctx, pending); err != nil {
			return nil, fmt.Errorf("consume otp: %w", err)
		}
	}

	token, err := s.tokens.GenerateToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &LoginResult{Token: token, User: user, IsNewUser: isNew}, nil
}

// checkCode returns the matching unused OTP without consuming it. A wrong
// code burns one attempt.
func (s *AuthService) checkCode(ctx context.Context, phone, code string, now time.Time) (*models.OTP, error) {
	otp, err := s.store.OTP().Latest(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, fmt.Errorf("get otp: %w", err)
	}
	if !otp.IsValid(now) {
		return nil, ErrInvalidOTP
	}
	if otp.Attempts >= s.cfg.OTPMaxAttempts {
		return nil, ErrOTPAttempts
	}

	if !otp.Matches(code) {
		otp.Attempts++
		if err := s.store.OTP().Save(ctx, otp); err != nil {
			return nil, fmt.Errorf("save otp attempt: %w", err)
		}
		return nil, ErrInvalidOTP
	}
	return otp, nil
}

// newUser validates signup input. Phones listed in ADMIN_PHONES become
// admins whatever role they ask for.
func (s *AuthService) newUser(phone string, role models.Role, displayName string, now time.Time) (*models.User, error) {
	isAdmin := s.cfg.IsAdminPhone(phone)
	switch {
	case isAdmin:
		role = models.RoleAdmin
	case !role.SignupRole():
		return nil, ErrRoleRequired
	}
	if n := utf8.RuneCountInString(displayName); role == models.RoleDriver && n > 0 && (n < minDisplayNameRunes || n > maxDisplayNameRunes) {
		return nil, invalid("display_name", "must be between %d and %d characters", minDisplayNameRunes, maxDisplayNameRunes)
	}

	return &models.User{
		PhoneNumber:   phone,
		PhoneVerified: true,
		Role:          role,
		IsAdmin:       isAdmin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// createUser stores a new user and, for drivers, an offline profile.
func (s *AuthService) createUser(ctx context.Context, user *models.User, displayName string, now time.Time) error {
	if user.Role != models.RoleDriver {
		if err := s.store.User().Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	}

	if displayName == "" {
		displayName = defaultDriverName
	}
	profile := &models.DriverProfile{DisplayName: displayName, AllowCalls: true, UpdatedAt: now}
	status := &models.DriverStatus{Status: models.DriverStatusOffline, LastUpdated: now}
	if err := s.store.User().CreateDriver(ctx, user, profile, status); err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	s.log.Info("driver signed up", logger.String("user_id", user.ID.String()))
	return nil
}

// CurrentUser loads the caller's account.
func (s *AuthService) CurrentUser(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.store.User().GetByID(ctx, actor.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
