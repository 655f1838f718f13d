package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/port"
	"github.com/boddenberg/licenciamento-bfa-go/internal/session"
)

var authTracer = otel.Tracer("service/auth")

const sessionCacheName = "session"

// AuthService logs users in against the backend and keeps their sessions.
type AuthService struct {
	gateway     port.AuthGateway
	sessions    port.Cache[*session.Session]
	jwtSecret   string
	fallbackTTL time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
	clock       clock
}

// NewAuthService creates a new auth service. jwtSecret may be empty, in which
// case tokens are decoded but their signature is left to the backend.
func NewAuthService(gateway port.AuthGateway, sessions port.Cache[*session.Session], jwtSecret string, fallbackTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		gateway:     gateway,
		sessions:    sessions,
		jwtSecret:   jwtSecret,
		fallbackTTL: fallbackTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

// Login forwards the credentials and opens a session from the returned token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*session.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.gateway.Login(ctx, req)
	if err != nil {
		observability.ForContext(ctx, s.logger).Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	now := s.clock.now()
	sess, err := session.New(resp.Token, resp.User, s.jwtSecret, s.fallbackTTL, now)
	if err != nil {
		return nil, err
	}
	s.sessions.Set(sess.Key(), sess, sess.ExpiresAt.Sub(now))

	span.SetAttributes(attribute.Int64("user.id", sess.User.ID))
	observability.ForContext(ctx, s.logger).Info("user logged in",
		zap.Int64("user_id", sess.User.ID),
		zap.Time("expires_at", sess.ExpiresAt),
	)
	return sess, nil
}

// Authenticate resolves a bearer token to a live session. Tokens not seen by
// this process (e.g. after a restart) are decoded and cached on first use.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	_, span := authTracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthorized{Message: "Token de autenticação não fornecido"}
	}

	now := s.clock.now()
	key := session.Key(token)
	if sess, ok := s.sessions.Get(key); ok {
		s.cacheHit()
		if sess.Expired(now) {
			s.sessions.Delete(key)
			return nil, &domain.ErrUnauthorized{Message: "Sessão expirada"}
		}
		return sess, nil
	}
	s.cacheMiss()

	sess, err := session.New(token, domain.User{}, s.jwtSecret, s.fallbackTTL, now)
	if err != nil {
		return nil, err
	}
	if sess.Expired(now) {
		return nil, &domain.ErrUnauthorized{Message: "Sessão expirada"}
	}
	s.sessions.Set(key, sess, sess.ExpiresAt.Sub(now))
	return sess, nil
}

// Logout forgets the session.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.sessions.Delete(session.Key(token))
	observability.ForContext(ctx, s.logger).Debug("session closed")
}

func (s *AuthService) cacheHit() {
	if s.metrics != nil {
		s.metrics.IncrCacheHit(sessionCacheName)
	}
}

func (s *AuthService) cacheMiss() {
	if s.metrics != nil {
		s.metrics.IncrCacheMiss(sessionCacheName)
	}
}
