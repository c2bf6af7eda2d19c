package propertyRepo

import (
	"context"
	"errors"

	"havenstay/models"
)

// ErrNotFound means no property matched the given id.
var ErrNotFound = errors.New("property not found")

// PropertyRepository is the read-only view of the property catalog this
// engine needs: nightly price and guest capacity.
type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
}
