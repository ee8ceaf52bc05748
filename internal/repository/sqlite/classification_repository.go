package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"binwatch/internal/dto"
	"binwatch/internal/model"
)

const classificationColumns = `id, filename, original, media_type, label, confidence,
	frames, skipped, votes, status, alert, severity, created_at`

// ClassificationRepository implements repository.ClassificationRepository for SQLite.
type ClassificationRepository struct {
	db *DB
}

// NewClassificationRepository creates a new SQLite classification repository.
func NewClassificationRepository(db *DB) *ClassificationRepository {
	return &ClassificationRepository{db: db}
}

// Insert adds a new classification record and fills in its ID.
// A zero CreatedAt is set to the current time.
func (r *ClassificationRepository) Insert(c *model.Classification) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	result, err := r.db.Conn().Exec(`
		INSERT INTO classifications (filename, original, media_type, label, confidence,
			frames, skipped, votes, status, alert, severity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Filename, c.Original, string(c.MediaType), string(c.Label), c.Confidence,
		c.Frames, c.Skipped, c.Votes, c.Status, c.Alert, c.Severity, c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert classification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read classification id: %w", err)
	}
	c.ID = id
	return id, nil
}

// GetByID retrieves a classification by its ID. It returns nil when none exists.
func (r *ClassificationRepository) GetByID(id int64) (*model.Classification, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`SELECT `+classificationColumns+` FROM classifications WHERE id = ?`, id)
	c, err := scanClassification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}
	return c, nil
}

// GetAll retrieves classifications matching the filter, newest first.
func (r *ClassificationRepository) GetAll(filter *dto.ClassificationFilters) ([]model.Classification, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := filterClause(filter)
	query := `SELECT ` + classificationColumns + ` FROM classifications` + where +
		` ORDER BY created_at DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	var out []model.Classification
	for rows.Next() {
		c, err := scanClassification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetTotalCount returns the number of classifications matching the filter,
// ignoring its limit and offset.
func (r *ClassificationRepository) GetTotalCount(filter *dto.ClassificationFilters) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := filterClause(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM classifications`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count classifications: %w", err)
	}
	return count, nil
}

// GetLabelCounts returns how many classifications ended with each label.
// Every known label is present, with zero when unused.
func (r *ClassificationRepository) GetLabelCounts() (map[model.Label]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	counts := make(map[model.Label]int, len(model.Labels))
	for _, l := range model.Labels {
		counts[l] = 0
	}

	rows, err := r.db.Conn().Query(`SELECT label, COUNT(*) FROM classifications GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query label counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts[model.Label(label)] = count
	}
	return counts, rows.Err()
}

// Delete removes a classification by its ID.
func (r *ClassificationRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM classifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete classification: %w", err)
	}
	return nil
}

// DeleteAll removes every classification.
func (r *ClassificationRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM classifications`); err != nil {
		return fmt.Errorf("failed to delete classifications: %w", err)
	}
	return nil
}

func filterClause(filter *dto.ClassificationFilters) (string, []any) {
	if filter == nil {
		return "", nil
	}

	var conds []string
	var args []any

	if filter.Label != "" {
		conds = append(conds, "label = ?")
		args = append(args, string(filter.Label))
	}
	if filter.MediaType != "" {
		conds = append(conds, "media_type = ?")
		args = append(args, string(filter.MediaType))
	}
	if !filter.DateAfter.IsZero() {
		conds = append(conds, "DATE(created_at) >= DATE(?)")
		args = append(args, filter.DateAfter.Format("2006-01-02"))
	}
	if !filter.DateBefore.IsZero() {
		conds = append(conds, "DATE(created_at) <= DATE(?)")
		args = append(args, filter.DateBefore.Format("2006-01-02"))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClassification(s scanner) (*model.Classification, error) {
	var c model.Classification
	var mediaType, label string
	err := s.Scan(&c.ID, &c.Filename, &c.Original, &mediaType, &label, &c.Confidence,
		&c.Frames, &c.Skipped, &c.Votes, &c.Status, &c.Alert, &c.Severity, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.MediaType = model.MediaType(mediaType)
	c.Label = model.Label(label)
	return &c, nil
}
