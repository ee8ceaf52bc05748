package repository

import (
	"binwatch/internal/dto"
	"binwatch/internal/model"
)

// ClassificationRepository defines the interface for classification history operations.
type ClassificationRepository interface {
	// Create operations
	Insert(c *model.Classification) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Classification, error)
	GetAll(filter *dto.ClassificationFilters) ([]model.Classification, error)
	GetTotalCount(filter *dto.ClassificationFilters) (int, error)
	GetLabelCounts() (map[model.Label]int, error)

	// Delete operations
	Delete(id int64) error
	DeleteAll() error
}
