package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
)

// ============================================================
// Empresas
// ============================================================

func listCompaniesHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/empresas")
		defer span.End()

		companies, err := svc.List(ctx, r.URL.Query().Get("busca"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, companies)
	}
}

func createCompanyHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/empresas")
		defer span.End()

		var draft domain.CompanyDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		result, err := svc.Create(ctx, &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func updateCompanyHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/empresas/{id}")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var draft domain.CompanyDraft
		if !decodeJSON(w, r, &draft) {
			return
		}

		result, err := svc.Update(ctx, id, &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func deleteCompanyHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/empresas/{id}")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		result, err := svc.Delete(ctx, id, confirmed(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func companyLicensesHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/empresas/{id}/licencas")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		licenses, err := svc.Licenses(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, licenses)
	}
}
