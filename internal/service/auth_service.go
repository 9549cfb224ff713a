package service

import (
	"context"
	"fmt"
	"time"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/platform/auth"
	"github.com/localserve/localserve-api/internal/platform/mailer"
	"github.com/localserve/localserve-api/internal/repo"
	"github.com/localserve/localserve-api/pkg/config"
	"github.com/localserve/localserve-api/pkg/events"
	"github.com/localserve/localserve-api/pkg/logger"
)

// SignUpResult carries the created account plus the plaintext verification
// token. The token goes to the delivery channel; handlers expose it to the
// HTTP caller only in email dev mode.
type SignUpResult struct {
	Account     *domain.AccountInfo
	VerifyToken string
}

// SignInResult is either a completed sign-in (Token set) or a phone
// verification step-up (OTPRequired set, no token yet).
type SignInResult struct {
	OTPRequired bool
	OTP         string
	Token       string
	ExpiresIn   int64
	Account     *domain.AccountInfo
}

type AuthService interface {
	SignUp(ctx context.Context, req *domain.SignUpRequest) (*SignUpResult, error)
	SignIn(ctx context.Context, req *domain.SignInRequest) (*SignInResult, error)
	VerifyEmail(ctx context.Context, token string) (*domain.AccountInfo, error)
	VerifyPhone(ctx context.Context, req *domain.VerifyPhoneRequest) (*SignInResult, error)
	ChangePassword(ctx context.Context, accountID int64, req *domain.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, token string, req *domain.ResetPasswordRequest) (*SignInResult, error)
}

type authService struct {
	accounts repo.AccountRepository
	issuer   *auth.TokenIssuer
	mailer   mailer.Service
	bus      events.Publisher
	config   *config.Config
	now      func() time.Time
}

func NewAuthService(
	accounts repo.AccountRepository,
	issuer *auth.TokenIssuer,
	mailer mailer.Service,
	bus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		accounts: accounts,
		issuer:   issuer,
		mailer:   mailer,
		bus:      bus,
		config:   config,
		now:      time.Now,
	}
}

// SignUp creates an account pending email verification. No session token is
// issued here; the caller signs in after verifying.
func (s *authService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*SignUpResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	verifyToken, verifyHash, err := auth.NewChallengeToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.config.Auth.EmailVerificationTTL)

	prefs := domain.DefaultNotificationPrefs()
	acct, err := s.accounts.Create(ctx, &domain.Account{
		Role:              domain.RoleUser,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		PasswordHash:      passwordHash,
		EmailVerification: domain.Challenge{Hash: &verifyHash, ExpiresAt: &expiresAt},
		Addresses:         []domain.Address{},
		NotificationPrefs: prefs,
	})
	if err != nil {
		if err == domain.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	verifyURL := s.buildVerificationURL(verifyToken)
	if err := s.mailer.SendVerificationEmail(acct.Email, acct.Name, verifyURL, verifyToken); err != nil {
		// The account exists either way; the caller can request a resend.
		logger.ErrorContext(ctx, "failed to send verification email", "error", err, "account_id", acct.ID)
	}

	s.publish(ctx, events.AccountRegistered, events.AccountRegisteredEvent{
		AccountID:    acct.ID,
		Email:        acct.Email,
		Name:         acct.Name,
		RegisteredAt: acct.CreatedAt,
	})

	return &SignUpResult{Account: acct.ToInfo(), VerifyToken: verifyToken}, nil
}

func (s *authService) SignIn(ctx context.Context, req *domain.SignInRequest) (*SignInResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	acct, err := s.resolveByContact(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	if !acct.IsEmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	valid, err := auth.VerifyPassword(req.Password, acct.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	// Phone verification step-up: the password checked out but the phone is
	// unconfirmed, so issue an OTP instead of a token.
	if acct.Phone != "" && !acct.IsPhoneVerified {
		otp, err := s.issuePhoneOTP(ctx, acct)
		if err != nil {
			return nil, err
		}
		return &SignInResult{OTPRequired: true, OTP: otp}, nil
	}

	return s.authenticated(ctx, acct)
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*domain.AccountInfo, error) {
	if token == "" {
		return nil, domain.NewValidationError("token", "is required")
	}

	hash := auth.HashChallengeToken(token)
	acct, err := s.accounts.FindByEmailVerificationHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	if acct.EmailVerification.ExpiredAt(s.now()) {
		return nil, domain.ErrChallengeExpired
	}

	ok, err := s.accounts.ConsumeEmailVerification(ctx, acct.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent consume or reissue.
		return nil, domain.ErrInvalidOrExpiredToken
	}

	s.publish(ctx, events.AccountEmailVerified, events.AccountVerifiedEvent{
		AccountID:  acct.ID,
		Channel:    "email",
		VerifiedAt: s.now(),
	})

	acct.IsEmailVerified = true
	acct.EmailVerification = domain.Challenge{}
	return acct.ToInfo(), nil
}

func (s *authService) VerifyPhone(ctx context.Context, req *domain.VerifyPhoneRequest) (*SignInResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	acct, err := s.accounts.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound
	}

	if !acct.PhoneOTP.Pending() {
		return nil, domain.ErrChallengeNotFound
	}
	if acct.PhoneOTP.ExpiredAt(s.now()) {
		return nil, domain.ErrChallengeExpired
	}

	match, err := auth.VerifyOTP(req.OTP, *acct.PhoneOTP.Hash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, domain.ErrChallengeMismatch
	}

	ok, err := s.accounts.ConsumePhoneOTP(ctx, acct.ID, *acct.PhoneOTP.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to consume OTP: %w", err)
	}
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}

	s.publish(ctx, events.AccountPhoneVerified, events.AccountVerifiedEvent{
		AccountID:  acct.ID,
		Channel:    "phone",
		VerifiedAt: s.now(),
	})

	acct.IsPhoneVerified = true
	acct.PhoneOTP = domain.Challenge{}
	return s.authenticated(ctx, acct)
}

func (s *authService) ChangePassword(ctx context.Context, accountID int64, req *domain.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account: %w", err)
	}
	if acct == nil {
		return domain.ErrNotFound
	}

	valid, err := auth.VerifyPassword(req.OldPassword, acct.PasswordHash)
	if err != nil {
		return err
	}
	if !valid {
		return domain.ErrInvalidCredentials
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.accounts.UpdatePassword(ctx, accountID, newHash)
}

// ForgotPassword issues a reset challenge and hands the plaintext token to
// the delivery channel. The returned plaintext exists so dev mode can
// surface it; production responses never include it.
func (s *authService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	acct, err := s.resolveByContact(ctx, req.Email, req.Phone)
	if err != nil {
		return "", err
	}

	resetToken, resetHash, err := auth.NewChallengeToken()
	if err != nil {
		return "", err
	}
	expiresAt := s.now().Add(s.config.Auth.PasswordResetTTL)

	if err := s.accounts.SetPasswordReset(ctx, acct.ID, resetHash, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := s.buildResetURL(resetToken)
	if err := s.mailer.SendPasswordResetEmail(acct.Email, acct.Name, resetURL, resetToken); err != nil {
		logger.ErrorContext(ctx, "failed to send password reset email", "error", err, "account_id", acct.ID)
	}

	return resetToken, nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req *domain.ResetPasswordRequest) (*SignInResult, error) {
	if token == "" {
		return nil, domain.NewValidationError("token", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.ResetPasswordByToken(ctx, auth.HashChallengeToken(token), newHash)
	if err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	s.publish(ctx, events.AccountPasswordReset, events.AccountPasswordResetEvent{
		AccountID: acct.ID,
		ResetAt:   s.now(),
	})

	return s.authenticated(ctx, acct)
}

// ---------- helpers ----------

func (s *authService) resolveByContact(ctx context.Context, email, phone string) (*domain.Account, error) {
	var acct *domain.Account
	var err error
	if email != "" {
		acct, err = s.accounts.FindByEmail(ctx, email)
	} else {
		acct, err = s.accounts.FindByPhone(ctx, phone)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound
	}
	return acct, nil
}

func (s *authService) issuePhoneOTP(ctx context.Context, acct *domain.Account) (string, error) {
	otp, err := auth.NewOTP()
	if err != nil {
		return "", err
	}
	otpHash, err := auth.HashOTP(otp)
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.config.Auth.PhoneOTPTTL)
	if err := s.accounts.SetPhoneOTP(ctx, acct.ID, otpHash, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	s.publish(ctx, events.NotifySMS, events.SMSNotification{
		Phone:   acct.Phone,
		Message: fmt.Sprintf("Your %s verification code is %s. It expires in 60 seconds.", s.config.App.Name, otp),
	})

	return otp, nil
}

func (s *authService) authenticated(ctx context.Context, acct *domain.Account) (*SignInResult, error) {
	token, err := s.issuer.Issue(acct.ID, acct.Role, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &SignInResult{
		Token:     token,
		ExpiresIn: int64(s.config.Auth.AccessTokenTTL.Seconds()),
		Account:   acct.ToInfo(),
	}, nil
}

func (s *authService) publish(ctx context.Context, subject string, data interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}

func (s *authService) buildVerificationURL(token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", s.config.App.BaseURL, token)
}

func (s *authService) buildResetURL(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, token)
}
