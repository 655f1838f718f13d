package service

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// MaxAttachmentBytes caps a proof-of-fulfillment upload.
const MaxAttachmentBytes = 4 << 20

// allowedProofTypes maps accepted file extensions to the content they must carry.
var allowedProofTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// NewAttachment checks a proof file by extension and by sniffed content.
func NewAttachment(fileName string, data []byte) (*domain.Attachment, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if len(data) == 0 {
		return nil, &domain.ErrValidation{Field: "comprovante", Message: "arquivo vazio"}
	}
	if len(data) > MaxAttachmentBytes {
		return nil, &domain.ErrValidation{Field: "comprovante", Message: "arquivo excede o tamanho máximo"}
	}

	want, ok := allowedProofTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, &domain.ErrValidation{Field: "comprovante", Message: "tipo de arquivo não permitido (png, jpg, jpeg, gif, pdf)"}
	}

	detected := mimetype.Detect(data)
	if !detected.Is(want) {
		return nil, &domain.ErrValidation{Field: "comprovante", Message: "conteúdo do arquivo não corresponde à extensão"}
	}

	return &domain.Attachment{FileName: name, ContentType: want, Data: data}, nil
}
