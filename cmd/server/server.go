package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel-comparables-engine/internal/handlers"
	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/database"
	"hotel-comparables-engine/internal/services/matcher"
	"hotel-comparables-engine/internal/utils"
)

const maxUploadSize = 10 << 20

// Server holds all dependencies
type Server struct {
	matcher   *matcher.Matcher
	uploadDir string
	repo      *database.PropertyRepository
	health    *handlers.HealthHandler
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResponse describes a stored dataset upload.
type UploadResponse struct {
	Key          string   `json:"key"`
	Properties   int      `json:"properties"`
	Warnings     []string `json:"warnings,omitempty"`
	Missing      []string `json:"missing_columns,omitempty"`
	ProcessingMs int64    `json:"processing_ms"`
}

// PresignedURLRequest represents the request for presigned URL
type PresignedURLRequest struct {
	Filename string `json:"filename"`
}

// PresignedURLResponse contains the presigned URL data
type PresignedURLResponse struct {
	URL     string `json:"url"`
	Key     string `json:"key"`
	Expires int    `json:"expires"`
}

// ComparablesResponse is the single-subject lookup result.
type ComparablesResponse struct {
	Index       int                      `json:"index"`
	Total       int                      `json:"total"`
	Previous    *int                     `json:"previous,omitempty"`
	Next        *int                     `json:"next,omitempty"`
	Subject     PropertyView             `json:"subject"`
	Comparables []matcher.MatchCandidate `json:"comparables"`
	Message     string                   `json:"message,omitempty"`
}

// PropertyView renders a property by column label, numbers included as text.
type PropertyView map[string]string

// NewPropertyView builds the display form of a property.
func NewPropertyView(p models.Property) PropertyView {
	view := make(PropertyView, len(models.AllColumns()))
	for _, c := range models.AllColumns() {
		view[string(c)] = p.Field(c)
	}
	return view
}

// NewServer creates a server that stores uploads under uploadDir.
func NewServer(m *matcher.Matcher, uploadDir string) *Server {
	return &Server{
		matcher:   m,
		uploadDir: uploadDir,
		health:    handlers.NewHealthHandlerWithChecker(nil),
	}
}

// WithDatabase enables postgres datasets.
func (s *Server) WithDatabase(db *database.DB) *Server {
	s.repo = database.NewPropertyRepository(db)
	s.health = handlers.NewHealthHandlerWithChecker(db)
	return s
}

// Routes returns the API mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/api/presigned-url", s.presignedURLHandler)
	mux.HandleFunc("/api/upload", s.uploadHandler)
	mux.HandleFunc("/api/comparables", s.comparablesHandler)
	mux.HandleFunc("/api/report", s.reportHandler)

	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := s.health.Check(r.Context())
	writeJSON(w, response.StatusCode(), Response{
		Success: response.StatusCode() == http.StatusOK,
		Message: "Hotel Comparables Engine API is running",
		Data:    response,
	})
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PresignedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Filename == "" {
		req.Filename = "properties.csv"
	}
	if !strings.HasSuffix(strings.ToLower(req.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	// Locally the "presigned" URL points back at the upload endpoint.
	key := newUploadKey()
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: PresignedURLResponse{
			URL:     fmt.Sprintf("http://%s/api/upload?key=%s", r.Host, key),
			Key:     key,
			Expires: 3600,
		},
	})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	var (
		content []byte
		key     string
		err     error
	)

	switch r.Method {
	case http.MethodPut:
		key = sanitizeKey(r.URL.Query().Get("key"))
		if key == "" {
			writeError(w, http.StatusBadRequest, "Missing or invalid key")
			return
		}
		content, err = io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
			return
		}
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			writeError(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer file.Close()
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
			return
		}
		key = newUploadKey()
		content, err = io.ReadAll(file)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	result, err := s.storeUpload(key, content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Dataset uploaded",
		Data:    result,
	})
}

// storeUpload validates the CSV and keeps it for later lookups.
func (s *Server) storeUpload(key string, content []byte) (*UploadResponse, error) {
	start := time.Now()

	validation, err := utils.ValidateCSVStructure(string(content))
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		if len(validation.Errors) > 0 {
			return nil, fmt.Errorf("invalid CSV: %s", strings.Join(validation.Errors, "; "))
		}
		if validation.RowCount == 0 {
			return nil, utils.ErrNoDataRows
		}
		return nil, utils.ErrMissingColumns
	}

	dataset, warnings := utils.NewCSVParser().ParseDataset(string(content))
	if dataset == nil {
		if len(warnings) > 0 {
			return nil, warnings[0]
		}
		return nil, utils.ErrNoDataRows
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, key), content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	utils.GetLogger().Info("Stored dataset upload",
		utils.String("key", key),
		utils.Int("properties", dataset.Len()),
		utils.Int("warnings", len(warnings)))

	result := &UploadResponse{
		Key:          key,
		Properties:   dataset.Len(),
		Missing:      validation.MissingColumns,
		ProcessingMs: time.Since(start).Milliseconds(),
	}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	return result, nil
}

func (s *Server) comparablesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dataset, status, err := s.loadDataset(r.Context(), r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "index must be an integer")
			return
		}
	}

	response, err := s.findComparables(dataset, index)
	switch {
	case errors.Is(err, models.ErrSubjectOutOfRange):
		writeError(w, http.StatusNotFound, fmt.Sprintf("index %d out of range [0, %d)", index, dataset.Len()))
		return
	case errors.Is(err, models.ErrInvalidMarketValue), errors.Is(err, models.ErrInvalidVPR):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: response})
}

// findComparables looks up the subject at index and ranks its comparables.
func (s *Server) findComparables(dataset *models.Dataset, index int) (*ComparablesResponse, error) {
	subject, err := dataset.At(index)
	if err != nil {
		return nil, err
	}

	comparables, err := s.matcher.FindComparables(subject, dataset.Properties)
	if err != nil {
		return nil, err
	}

	response := &ComparablesResponse{
		Index:       index,
		Total:       dataset.Len(),
		Subject:     NewPropertyView(subject),
		Comparables: comparables,
	}
	if index > 0 {
		prev := index - 1
		response.Previous = &prev
	}
	if index < dataset.Len()-1 {
		next := index + 1
		response.Next = &next
	}
	if len(comparables) == 0 {
		response.Message = "No comparable properties found"
	}
	return response, nil
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dataset, status, err := s.loadDataset(r.Context(), r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	report, err := s.matcher.BuildReport(r.Context(), dataset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, Response{Success: true, Data: report})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="comparables_%s.csv"`, report.ID))
	if err := utils.WriteReportCSV(w, report); err != nil {
		utils.GetLogger().Error("Failed to write report", utils.Error(err))
	}
}

// loadDataset resolves ?key= to an uploaded CSV or ?dataset= to the
// properties table.
func (s *Server) loadDataset(ctx context.Context, r *http.Request) (*models.Dataset, int, error) {
	query := r.URL.Query()

	if key := query.Get("key"); key != "" {
		safe := sanitizeKey(key)
		if safe == "" {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid key")
		}
		content, err := os.ReadFile(filepath.Join(s.uploadDir, safe))
		if err != nil {
			return nil, http.StatusNotFound, fmt.Errorf("file not found, please upload again")
		}
		dataset, warnings := utils.NewCSVParser().ParseDataset(string(content))
		if dataset == nil {
			return nil, http.StatusBadRequest, fmt.Errorf("failed to parse dataset: %v", warnings)
		}
		return dataset, http.StatusOK, nil
	}

	if s.repo == nil {
		return nil, http.StatusBadRequest, fmt.Errorf("key is required when no database is configured")
	}
	dataset, err := s.repo.GetDataset(ctx, query.Get("dataset"))
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return dataset, http.StatusOK, nil
}

func newUploadKey() string {
	return uuid.New().String() + ".csv"
}

// sanitizeKey reduces a client supplied key to a bare file name.
func sanitizeKey(key string) string {
	base := filepath.Base(key)
	if base == "." || base == "/" || base == ".." || !strings.HasSuffix(base, ".csv") {
		return ""
	}
	return base
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
