package jobposting

import (
	"errors"

	"jobposting-workers/internal/models"
)

var (
	ErrContentTypeNotFound  = errors.New("CONTENT_TYPE_NOT_FOUND")
	ErrDuplicateName        = errors.New("DUPLICATE_NAME")
	ErrFolderCreateFailed   = errors.New("FOLDER_CREATE_FAILED")
	ErrMetadataUpdateFailed = errors.New("METADATA_UPDATE_FAILED")
	ErrTemplateCopyFailed   = errors.New("TEMPLATE_COPY_FAILED")
)

// StatusFromError maps a provisioning outcome to the form status shown to
// the requester.
func StatusFromError(err error) models.FormStatus {
	switch {
	case err == nil:
		return models.FormStatusSuccess
	case errors.Is(err, ErrDuplicateName):
		return models.FormStatusDuplicateName
	default:
		return models.FormStatusFailed
	}
}
