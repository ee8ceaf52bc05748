package handler

import (
	"errors"
	"net/http"

	"binwatch/internal/config"
	"binwatch/internal/dto"
	"binwatch/internal/logger"
	"binwatch/internal/service"
)

const multipartMemory = 32 << 20

// ClassifyHandler handles POST /api/classify with a multipart "file" field.
func ClassifyHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSizeMB<<20)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, logger, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, logger, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		if header.Filename == "" {
			writeError(w, logger, http.StatusBadRequest, "file name is required")
			return
		}

		c, err := manager.ClassifyUpload(r.Context(), header.Filename, file)
		if err != nil {
			status, message := statusFor(err)
			if status == http.StatusInternalServerError {
				logger.Error("Classification of %s failed: %v", header.Filename, err)
			} else {
				logger.Warning("Rejected upload %s: %v", header.Filename, err)
			}
			writeError(w, logger, status, message)
			return
		}

		writeJSON(w, logger, http.StatusOK, dto.NewClassifyResponse(*c))
	}
}
