package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
	"github.com/boddenberg/licenciamento-bfa-go/internal/session"
)

// SessionMiddleware resolves the Bearer token to a session and stores it in
// the request context, where the backend client picks it up. With required
// false, requests without a token pass through anonymously and the backend
// decides.
func SessionMiddleware(authSvc *service.AuthService, required bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			sess, err := authSvc.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("auth: rejected token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// currentSession returns the session of the request or answers 401.
func currentSession(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		handleServiceError(w, &domain.ErrUnauthorized{Message: "Sessão não encontrada"}, logger)
		return nil, false
	}
	return sess, true
}
