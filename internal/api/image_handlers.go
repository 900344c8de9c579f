package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"serwer-obrazow/internal/images"
)

// writeServiceError maps the core error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, images.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, images.ErrTokenExpired):
		http.Error(w, "Token expired", http.StatusForbidden)
	case errors.Is(err, images.ErrPermissionDenied):
		http.Error(w, "You do not have permission to access this resource", http.StatusForbidden)
	case errors.Is(err, images.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		log.Printf("ERROR: unexpected service error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// @Summary      Upload an image
// @Description  Accepts a PNG or JPEG image, derives thumbnails per the uploader's account tier and returns the generated links. An optional expire_seconds form field (300-30000) requests expiring thumbnail links on tiers that allow them.
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Param        image           formData  file    true   "Image file (PNG or JPEG)"
// @Param        expire_seconds  formData  int     false  "Thumbnail link lifetime in seconds"
// @Success      201  {object}  images.UploadResult
// @Failure      400  {string}  string "Invalid payload or expire_seconds"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Security     BearerAuth
// @Router       /upload [post]
func (s *Server) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing or invalid 'image' form field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	var expireSeconds *int
	if raw := r.FormValue("expire_seconds"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "expire_seconds must be an integer", http.StatusBadRequest)
			return
		}
		expireSeconds = &parsed
	}

	result, err := s.service.Upload(r.Context(), requesterFromContext(r.Context()), payload, expireSeconds)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	uploadsTotal.Inc()
	thumbnailsGenerated.Add(float64(len(result.Thumbnails)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// @Summary      Fetch an original image
// @Description  Streams the original image behind an access token. Only the owner (or an admin) may fetch it.
// @Tags         images
// @Produce      image/jpeg
// @Param        token  path  string  true  "Image access token"
// @Success      200  {file}    file
// @Failure      403  {string}  string "Permission denied"
// @Failure      404  {string}  string "Not found"
// @Security     BearerAuth
// @Router       /image/{token} [get]
func (s *Server) RetrieveImageHandler(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	stream, contentType, err := s.service.RetrieveImage(r.Context(), requesterFromContext(r.Context()), tok)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("ERROR: Failed to stream image %s: %v", tok, err)
	}
}

// @Summary      Fetch a thumbnail
// @Description  Streams a derived thumbnail behind an access token. Expired links return 403.
// @Tags         images
// @Produce      image/jpeg
// @Param        token  path  string  true  "Thumbnail access token"
// @Success      200  {file}    file
// @Failure      403  {string}  string "Permission denied or token expired"
// @Failure      404  {string}  string "Not found"
// @Security     BearerAuth
// @Router       /thumbnail/{token} [get]
func (s *Server) RetrieveThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	stream, contentType, err := s.service.RetrieveThumbnail(r.Context(), requesterFromContext(r.Context()), tok)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("ERROR: Failed to stream thumbnail %s: %v", tok, err)
	}
}

// @Summary      List own images
// @Description  Returns every image uploaded by the authenticated user together with its thumbnail links.
// @Tags         images
// @Produce      json
// @Success      200  {array}   images.ImageListItem
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Security     BearerAuth
// @Router       /user-images [get]
func (s *Server) ListUserImagesHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ListUserImages(r.Context(), requesterFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
