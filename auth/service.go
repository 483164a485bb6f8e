package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/types"
)

// Mailer delivers one-time codes to students.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogMailer writes codes to the log instead of sending mail. Default
// for development deployments without an SMTP relay.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger.With(zap.String("component", "mailer"))}
}

func (m *LogMailer) SendOTP(ctx context.Context, email, code string) error {
	m.logger.Info("otp issued", zap.String("email", email), zap.String("code", code))
	return nil
}

// Service runs the three-step registration flow: signup sends an OTP to
// a roster-verified email, verify-otp sets the password, login issues a
// token.
type Service struct {
	roster *Roster
	users  *UserStore
	otps   *OTPStore
	mailer Mailer
	tokens *TokenIssuer
	logger *zap.Logger
}

// NewService wires the auth service.
func NewService(roster *Roster, users *UserStore, otps *OTPStore, mailer Mailer, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		roster: roster,
		users:  users,
		otps:   otps,
		mailer: mailer,
		tokens: tokens,
		logger: logger.With(zap.String("component", "auth")),
	}
}

// generateOTP returns a 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Signup verifies the student against the roster and sends an OTP.
func (s *Service) Signup(ctx context.Context, regID, email string) error {
	if s.roster.Find(regID, email) == nil {
		return types.NewError(types.ErrInvalidRequest, "invalid registration ID or email")
	}
	if s.users.Exists(regID) {
		return types.NewError(types.ErrInvalidRequest, "user already registered")
	}

	code, err := generateOTP()
	if err != nil {
		return types.NewError(types.ErrInternalError, "failed to generate OTP").WithCause(err)
	}

	s.otps.Put(regID, code)
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return types.NewError(types.ErrServiceUnavailable, "failed to send OTP").WithCause(err)
	}

	s.logger.Info("signup otp sent", zap.String("reg_id", regID))
	return nil
}

// VerifyOTP checks the pending code and stores the password.
func (s *Service) VerifyOTP(ctx context.Context, regID, code, password, confirmPassword string) error {
	pending := s.otps.Get(regID)
	if pending == "" {
		return types.NewError(types.ErrInvalidRequest, "OTP not requested or expired")
	}
	if subtle.ConstantTimeCompare([]byte(pending), []byte(code)) != 1 {
		return types.NewError(types.ErrInvalidRequest, "invalid OTP")
	}
	if password != confirmPassword {
		return types.NewError(types.ErrInvalidRequest, "passwords do not match")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return types.NewError(types.ErrInternalError, "failed to hash password").WithCause(err)
	}
	if err := s.users.Save(regID, hash); err != nil {
		return types.NewError(types.ErrInternalError, "failed to save user").WithCause(err)
	}

	s.otps.Delete(regID)
	s.logger.Info("user registered", zap.String("reg_id", regID))
	return nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, regID, password string) (string, error) {
	stored := s.users.PasswordHash(regID)
	if stored == "" {
		return "", types.NewError(types.ErrAuthentication, "user not found")
	}
	if !VerifyPassword(password, stored) {
		return "", types.NewError(types.ErrAuthentication, "invalid credentials")
	}

	token, err := s.tokens.Issue(regID)
	if err != nil {
		return "", err
	}

	s.logger.Info("login succeeded", zap.String("reg_id", regID))
	return token, nil
}

// VerifyToken validates an access token and returns the registration ID.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	return s.tokens.Verify(tokenString)
}
