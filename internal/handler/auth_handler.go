package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
)

// ============================================================
// Autenticação
// ============================================================

func loginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/login")
		defer span.End()

		var req domain.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		sess, err := authSvc.Login(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, sess.Info())
	}
}

func sessionHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sess.Info())
	}
}

func logoutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/logout")
		defer span.End()

		sess, ok := currentSession(w, r, logger)
		if !ok {
			return
		}
		authSvc.Logout(ctx, sess.Token)
		w.WriteHeader(http.StatusNoContent)
	}
}
