package warranty

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	maxUploadSize  = int64(50 << 20) // high-resolution phone photos
	maxExtractSize = int64(1 << 20)
)

// warrantyResponse is a warranty plus its rendered reminder
type warrantyResponse struct {
	*Warranty
	Reminder string `json:"reminder"`
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// writeProcessError maps extraction failures to 422 so clients can ask for a clearer image
func writeProcessError(w http.ResponseWriter, err error) {
	var failure *ExtractionFailure
	if errors.As(err, &failure) {
		setCORSHeaders(w)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": FailureMessage(failure.Kind),
			"kind":  failure.Kind.String(),
			"text":  failure.Text,
		})
		return
	}
	writeJSONError(w, http.StatusBadRequest, err.Error())
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// contentTypeFor guesses the upload type from the file extension when the client sent none
func contentTypeFor(filename, declared string) string {
	contentType := strings.ToLower(strings.TrimSpace(declared))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleUploadReceipt reads an uploaded bill and stores the warranty found on it
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeJSONError(w, http.StatusBadRequest, errorMsg)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		writeJSONError(w, http.StatusBadRequest, errorMsg)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	contentType := contentTypeFor(header.Filename, header.Header.Get("Content-Type"))

	warranty, err := s.service.ProcessReceipt(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, warrantyResponse{Warranty: warranty, Reminder: Reminder(warranty)})
}

// handleExtract runs the extractor over posted text
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text *string `json:"text"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxExtractSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	warranty, err := s.service.ExtractText(*req.Text)
	if err != nil {
		writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, warrantyResponse{Warranty: warranty, Reminder: Reminder(warranty)})
}

// handleListWarranties returns all warranties
func (s *Server) handleListWarranties(w http.ResponseWriter, r *http.Request) {
	warranties, err := s.service.ListWarranties()
	if err != nil {
		slog.Error("Error listing warranties", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, warranties)
}

// handleListExpiring returns warranties expiring within ?days= (default 30)
func (s *Server) handleListExpiring(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			corsError(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	warranties, err := s.service.ListExpiring(days)
	if err != nil {
		slog.Error("Error listing expiring warranties", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, warranties)
}

// writeLookupError turns a missing record into 404 and anything else into 500
func writeLookupError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, ErrNotFound) {
		corsError(w, notFound, http.StatusNotFound)
		return
	}
	slog.Error("Error looking up warranty", "error", err)
	corsError(w, "Internal server error", http.StatusInternalServerError)
}

// handleGetWarranty returns a single warranty
func (s *Server) handleGetWarranty(w http.ResponseWriter, r *http.Request) {
	warranty, err := s.service.GetWarranty(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err, "Warranty not found")
		return
	}
	writeJSON(w, http.StatusOK, warrantyResponse{Warranty: warranty, Reminder: Reminder(warranty)})
}

// handleGetReminder returns the reminder text for a warranty
func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	reminder, err := s.service.GetReminder(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err, "Warranty not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, reminder)
}

// handleGetWarrantyFile returns the receipt file for a warranty
func (s *Server) handleGetWarrantyFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetWarrantyFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteWarranty deletes a warranty
func (s *Server) handleDeleteWarranty(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteWarranty(r.PathValue("id")); err != nil {
		writeLookupError(w, err, "Warranty not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
