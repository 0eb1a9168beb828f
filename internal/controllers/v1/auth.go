package v1

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledgerlane/backend/internal/importer"
	"github.com/ledgerlane/backend/internal/models"
)

// resolveUser resolves the user for the request from its bearer token.
//
// An unknown token is indistinguishable from a missing one so that tokens
// cannot be probed.
func resolveUser(c *gin.Context) (models.User, error) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		return models.User{}, importer.ErrUnauthorized
	}

	var user models.User
	err := models.DB.Where(models.User{Token: token}).First(&user).Error
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) {
			return models.User{}, importer.ErrUnauthorized
		}

		return models.User{}, err
	}

	return user, nil
}
