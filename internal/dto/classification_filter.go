// ClassificationFilters describe user-provided filters to narrow the classification history.
package dto

import (
	"time"

	"binwatch/internal/model"
)

type ClassificationFilters struct {
	Label      model.Label
	MediaType  model.MediaType
	DateAfter  time.Time
	DateBefore time.Time
	Limit      int
	Offset     int
}
