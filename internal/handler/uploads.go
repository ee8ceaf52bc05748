package handler

import (
	"net/http"
	"os"

	"binwatch/internal/service/storage"
)

// ViewUploadHandler serves a stored upload named by the "file" query parameter.
func ViewUploadHandler(uploads *storage.UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("file")
		if name == "" {
			http.Error(w, "File parameter is required", http.StatusBadRequest)
			return
		}
		path, err := uploads.Path(name)
		if err != nil {
			http.Error(w, "Invalid file name", http.StatusBadRequest)
			return
		}
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}
}
