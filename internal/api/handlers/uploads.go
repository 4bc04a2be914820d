package handlers

import (
	"errors"
	"net/http"

	"github.com/eventura/server/internal/api/respond"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/images"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UploadsHandler struct {
	Dir string
}

func NewUploadsHandler(dir string) *UploadsHandler {
	return &UploadsHandler{Dir: dir}
}

type uploadResponse struct {
	Message  string `json:"message"`
	Location string `json:"location"`
}

// Create accepts a multipart "file" part, normalizes it, and returns the
// public path of the stored file.
func (h *UploadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, r, accounts.ValidationError{Field: "file", Message: "multipart upload required"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, accounts.ValidationError{Field: "file", Message: "is required"})
		return
	}
	defer file.Close()

	name, err := images.Process(file, h.Dir)
	if err != nil {
		if errors.Is(err, images.ErrUnsupportedFormat) {
			respond.Error(w, r, accounts.ValidationError{Field: "file", Message: "must be a JPEG or PNG image"})
			return
		}
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, uploadResponse{
		Message:  "image stored",
		Location: "/uploads/" + name,
	})
}
