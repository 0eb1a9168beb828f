package v1

import (
	"errors"
	"net/http"

	"github.com/ledgerlane/backend/internal/importer"
	"github.com/ledgerlane/backend/internal/models"
)

// status returns the appropriate HTTP status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, importer.ErrUnauthorized) {
		return http.StatusUnauthorized
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errNoFilePost         = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix    = errors.New("this endpoint only supports files of the following type")
	errAccountIDParameter = errors.New("the accountId parameter must be set to a valid UUID")
)
