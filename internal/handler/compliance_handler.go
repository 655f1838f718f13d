package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/deadline"
	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
)

// ============================================================
// Condicionantes
// ============================================================

// multipartMemory is what ParseMultipartForm keeps in memory before spilling to disk.
const multipartMemory = 4 << 20

func listComplianceHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/condicionantes")
		defer span.End()

		licenseID, err := queryInt64(r, "licenca_id")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		filter := domain.ComplianceFilter{
			LicenseID: licenseID,
			Status:    r.URL.Query().Get("status"),
		}

		views, err := svc.List(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func urgentComplianceHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/condicionantes/urgentes")
		defer span.End()

		days, err := queryInt64(r, "dias")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		views, err := svc.Urgent(ctx, int(days))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func previewDueDateHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/condicionantes/prazo")
		defer span.End()

		var draft deadline.Draft
		if !decodeJSON(w, r, &draft) {
			return
		}

		resolved, err := svc.Preview(ctx, &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resolved)
	}
}

func getComplianceHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/condicionantes/{id}")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		view, err := svc.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func createComplianceHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/condicionantes")
		defer span.End()

		var draft deadline.Draft
		if !decodeJSON(w, r, &draft) {
			return
		}
		draft.ID = 0

		result, err := svc.Create(ctx, &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func updateComplianceHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/condicionantes/{id}")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var draft deadline.Draft
		if !decodeJSON(w, r, &draft) {
			return
		}
		draft.ID = id

		result, err := svc.Update(ctx, id, &draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func deleteComplianceHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/condicionantes/{id}")
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

// markFulfilledHandler accepts the same multipart form the backend does:
// data_envio_cumprimento, observacoes and an optional comprovante file.
// A JSON body with the first two fields is accepted too.
func markFulfilledHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/condicionantes/{id}/marcar-cumprida")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		in, err := readFulfillment(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := svc.MarkFulfilled(ctx, id, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func markFulfilledQuickHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/condicionantes/{id}/marcar-cumprida-rapido")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		result, err := svc.MarkFulfilledQuick(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func markPendingHandler(svc *service.ComplianceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/condicionantes/{id}/marcar-pendente")
		defer span.End()

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		result, err := svc.MarkPending(ctx, id, confirmed(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func readFulfillment(r *http.Request) (domain.FulfillmentInput, error) {
	var in domain.FulfillmentInput

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		var body struct {
			FulfilledOn domain.Date `json:"data_envio_cumprimento"`
			Notes       string      `json:"observacoes"`
		}
		if err := decodeBody(r, &body); err != nil {
			return in, err
		}
		in.FulfilledOn, in.Notes = body.FulfilledOn, body.Notes
		return in, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, service.MaxAttachmentBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, &domain.ErrValidation{Field: "comprovante", Message: "formulário inválido"}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	if raw := r.FormValue("data_envio_cumprimento"); raw != "" {
		on, ok := domain.ParseDate(raw)
		if !ok {
			return in, &domain.ErrValidation{Field: "data_envio_cumprimento", Message: "data inválida, use AAAA-MM-DD"}
		}
		in.FulfilledOn = on
	}
	in.Notes = r.FormValue("observacoes")

	file, header, err := r.FormFile("comprovante")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, &domain.ErrValidation{Field: "comprovante", Message: "arquivo inválido"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxAttachmentBytes+1))
	if err != nil {
		return in, &domain.ErrValidation{Field: "comprovante", Message: "falha ao ler o arquivo"}
	}
	att, err := service.NewAttachment(header.Filename, data)
	if err != nil {
		return in, err
	}
	in.Attachment = att
	return in, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &domain.ErrValidation{Field: "body", Message: "Corpo da requisição inválido"}
	}
	return nil
}
