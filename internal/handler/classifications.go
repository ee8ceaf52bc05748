package handler

import (
	"net/http"

	"binwatch/internal/dto"
	"binwatch/internal/logger"
	"binwatch/internal/model"
	"binwatch/internal/service"
)

// GetClassificationsHandler returns a filtered, paginated page of the history.
func GetClassificationsHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		filter := &dto.ClassificationFilters{
			DateAfter:  parseDate(q.Get("dateAfter")),
			DateBefore: parseDate(q.Get("dateBefore")),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}
		if v := q.Get("label"); v != "" {
			label, ok := model.ParseLabel(v)
			if !ok {
				writeError(w, logger, http.StatusBadRequest, "unknown label "+v)
				return
			}
			filter.Label = label
		}
		switch mt := model.MediaType(q.Get("type")); mt {
		case "":
		case model.MediaImage, model.MediaVideo:
			filter.MediaType = mt
		default:
			writeError(w, logger, http.StatusBadRequest, "unknown media type "+string(mt))
			return
		}

		repo := manager.Repository()
		records, err := repo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying classifications from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := repo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting classifications: %v", err)
			totalCount = len(records)
		}

		infos := make([]dto.ClassificationInfo, 0, len(records))
		for _, c := range records {
			infos = append(infos, dto.NewClassificationInfo(c))
		}

		writeJSON(w, logger, http.StatusOK, dto.ClassificationsData{
			Classifications: infos,
			Length:          totalCount,
			TotalPages:      (totalCount + limit - 1) / limit,
			CurrentPage:     page,
			Limit:           limit,
		})
	}
}

// ViewClassificationHandler returns one classification by its "id" query parameter.
func ViewClassificationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		id, ok := parseID(r)
		if !ok {
			writeError(w, logger, http.StatusBadRequest, "valid id required")
			return
		}

		c, err := manager.Repository().GetByID(id)
		if err != nil {
			logger.Error("Error loading classification %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if c == nil {
			writeError(w, logger, http.StatusNotFound, "classification not found")
			return
		}
		writeJSON(w, logger, http.StatusOK, dto.NewClassificationInfo(*c))
	}
}

// DeleteClassificationHandler removes a classification and its upload.
func DeleteClassificationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		id, ok := parseID(r)
		if !ok {
			writeError(w, logger, http.StatusBadRequest, "valid id required")
			return
		}

		found, err := manager.Delete(id)
		if err != nil {
			logger.Error("Failed to delete classification %d: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !found {
			writeError(w, logger, http.StatusNotFound, "classification not found")
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"status": "deleted", "id": id})
	}
}

// ClearClassificationsHandler deletes every upload and clears the history.
func ClearClassificationsHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		if _, err := manager.Clear(); err != nil {
			logger.Error("Error clearing classifications: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClassificationStatsHandler returns label counts over the whole history.
func ClassificationStatsHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		stats, err := manager.Stats()
		if err != nil {
			logger.Error("Error computing classification stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, logger, http.StatusOK, stats)
	}
}
