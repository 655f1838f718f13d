package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
)

// ============================================================
// Licenças
// ============================================================

func listLicensesHandler(svc *service.LicenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/licencas")
		defer span.End()

		companyID, err := queryInt64(r, "empresa_id")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		flat, _ := strconv.ParseBool(r.URL.Query().Get("flat"))
		filter := domain.LicenseFilter{
			CompanyID: companyID,
			Status:    r.URL.Query().Get("status"),
			Flat:      flat,
		}

		licenses, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, licenses)
	}
}

func getLicenseHandler(svc *service.LicenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/licencas/{id}")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		detail, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func createLicenseHandler(svc *service.LicenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/licencas")
		defer span.End()

		var draft domain.LicenseDraft
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

func updateLicenseHandler(svc *service.LicenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/licencas/{id}")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var draft domain.LicenseDraft
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

func deleteLicenseHandler(svc *service.LicenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/licencas/{id}")
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
