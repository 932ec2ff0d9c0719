package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/raksha/internal/auth"
	"github.com/spec-kit/raksha/internal/config"
	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/remote"
	"github.com/spec-kit/raksha/internal/repository"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

const invalidCredentials = "Invalid email or password"

// AuthRemote is the backend surface for identity.
type AuthRemote interface {
	Login(ctx context.Context, email, password string) (*remote.AuthResult, error)
	Register(ctx context.Context, name, email, phone, password string) (*remote.AuthResult, error)
	VerifyToken(ctx context.Context) (*domain.User, error)
	SetToken(token string)
	ClearToken()
	Token() string
}

// AuthService coordinates registration, login and the saved session.
// Every flow works offline against the locally cached users.
type AuthService struct {
	mu      sync.RWMutex
	current *domain.User

	users      repository.UserRepository
	sessions   repository.SessionRepository
	remote     AuthRemote
	clock      clock.Clock
	logger     *zap.Logger
	bcryptCost int
	sessionTTL time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Remote      AuthRemote
	Clock       clock.Clock
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		remote:     deps.Remote,
		clock:      deps.Clock,
		logger:     deps.Logger.Named("auth"),
		bcryptCost: cfg.BcryptCost,
		sessionTTL: cfg.SessionTimeout(),
	}
}

// Register creates an account, on the backend when reachable and locally
// otherwise, and logs the new user in.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	for _, err := range []error{validateName(name), validateEmail(email), validatePhone(phone), validatePassword(password)} {
		if err != nil {
			return nil, "", err
		}
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}

	var (
		user    domain.User
		token   string
		message string
	)
	result, remoteErr := s.callRegister(ctx, name, email, phone, password)
	if remoteErr == nil && result.User != nil {
		user = *result.User
		token = result.Token
		message = "Registration successful"
	} else {
		if _, exists := s.users.FindByEmail(ctx, email); exists {
			return nil, "", apperrors.NewDuplicateEmail("Email already registered")
		}
		now := s.clock.Now()
		user = domain.User{
			UserID:    uuid.NewString(),
			Name:      name,
			Email:     email,
			Phone:     phone,
			CreatedAt: &now,
			IsActive:  true,
		}
		message = "Registration successful (offline)"
	}
	user.PasswordHash = hash

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, "", apperrors.NewPersistenceError("Failed to save user data", err)
	}
	s.startSession(ctx, user, token)
	s.logger.Info("user registered", zap.String("user_id", user.UserID), zap.Bool("offline", token == ""))

	public := user.Public()
	return &public, message, nil
}

func (s *AuthService) callRegister(ctx context.Context, name, email, phone, password string) (*remote.AuthResult, error) {
	if s.remote == nil {
		return nil, &remote.SyncError{Endpoint: remote.EndpointRegister, Kind: remote.KindOffline, Message: "no backend configured"}
	}
	return s.remote.Register(ctx, name, email, phone, password)
}

// Login authenticates against the backend, falling back to the cached
// password hash when the backend cannot confirm the credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", apperrors.NewValidationError("Email and password are required", nil)
	}

	if s.remote != nil {
		result, err := s.remote.Login(ctx, email, password)
		if err == nil && result.User != nil {
			user, saveErr := s.mergeRemoteUser(ctx, *result.User, email, password)
			if saveErr != nil {
				return nil, "", saveErr
			}
			s.startSession(ctx, user, result.Token)
			public := user.Public()
			return &public, "Login successful", nil
		}
		if err != nil {
			s.logger.Debug("backend login failed, trying offline", zap.Error(err))
		}
	}

	local, ok := s.users.FindByEmail(ctx, email)
	if !ok || !auth.PasswordMatches(local.PasswordHash, password) {
		return nil, "", apperrors.NewInvalidCredentials(invalidCredentials)
	}
	now := s.clock.Now()
	local.LastLogin = &now
	if err := s.users.Upsert(ctx, *local); err != nil {
		s.logger.Warn("failed to record last login", zap.Error(err))
	}
	s.startSession(ctx, *local, "")

	public := local.Public()
	return &public, "Login successful (offline)", nil
}

func (s *AuthService) mergeRemoteUser(ctx context.Context, fresh domain.User, email, password string) (domain.User, error) {
	user := fresh
	if existing, ok := s.users.FindByEmail(ctx, email); ok {
		user = *existing
		user.Name = fresh.Name
		user.Phone = fresh.Phone
		if fresh.UserID != "" {
			user.UserID = fresh.UserID
		}
		if fresh.ID != nil {
			user.ID = fresh.ID
		}
		if fresh.LastLogin != nil {
			user.LastLogin = fresh.LastLogin
		}
	}
	if user.Email == "" {
		user.Email = email
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return domain.User{}, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Upsert(ctx, user); err != nil {
		return domain.User{}, apperrors.NewPersistenceError("Failed to save user data", err)
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user domain.User, token string) {
	public := user.Public()
	s.mu.Lock()
	s.current = &public
	s.mu.Unlock()

	if token == "" && s.remote != nil {
		s.remote.ClearToken()
	}
	session := domain.Session{User: public, Token: token, Timestamp: s.clock.Now()}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("failed to save session", zap.Error(err))
	}
}

// Logout forgets the current user, the saved session and the bearer token.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.remote != nil {
		s.remote.ClearToken()
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return apperrors.NewPersistenceError("Failed to clear session", err)
	}
	return nil
}

// RestoreSession reloads the saved session. Expired sessions are removed.
// A stored token is handed back to the backend client while still valid.
func (s *AuthService) RestoreSession(ctx context.Context) (*domain.User, bool) {
	session, ok := s.sessions.Load(ctx)
	if !ok {
		return nil, false
	}
	now := s.clock.Now()
	if session.Expired(now, s.sessionTTL) {
		s.logger.Info("saved session expired", zap.String("user_id", session.User.UserID))
		if err := s.sessions.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear expired session", zap.Error(err))
		}
		return nil, false
	}

	if s.remote != nil && auth.TokenUsable(session.Token, now) {
		s.remote.SetToken(session.Token)
	}

	user := session.User.Public()
	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()

	out := user
	return &out, true
}

// VerifySession asks the backend whether the bearer token is still good.
// It returns true when the backend cannot be reached; a rejection drops
// the token but keeps the local session for offline use.
func (s *AuthService) VerifySession(ctx context.Context) (bool, error) {
	if s.CurrentUser() == nil {
		return false, apperrors.NewUnauthorized("login required")
	}
	if s.remote == nil || s.remote.Token() == "" {
		return true, nil
	}

	fresh, err := s.remote.VerifyToken(ctx)
	switch {
	case err == nil:
		if fresh != nil {
			s.refreshCurrent(*fresh)
		}
		return true, nil
	case remote.IsRejected(err):
		s.logger.Info("backend rejected session token")
		s.remote.ClearToken()
		return false, nil
	default:
		return true, nil
	}
}

func (s *AuthService) refreshCurrent(fresh domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || !s.current.SameEmail(fresh.Email) {
		return
	}
	s.current.Name = fresh.Name
	s.current.Phone = fresh.Phone
}

// CurrentUser returns a copy of the logged-in user or nil.
func (s *AuthService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}
