package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"olstudio/adapters/stats/descriptive"
	"olstudio/adapters/stats/regression"
	"olstudio/adapters/tabular"
	"olstudio/domain/core"
	"olstudio/internal/cleaning"
	apperrors "olstudio/internal/errors"
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

type statsRequest struct {
	DependentVar    string   `json:"dependent_var"`
	IndependentVars []string `json:"independent_vars"`
}

type olsRequest struct {
	DependentVar    string   `json:"dependent_var"`
	IndependentVars []string `json:"independent_vars"`
	ModelName       string   `json:"model_name"`
}

type cleaningRequest struct {
	Decisions json.RawMessage `json:"decisions"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "OLS Analysis Studio API",
		"status":  "running",
	})
}

// handleUpload validates and parses an uploaded CSV/Excel file, creates a
// session for it, and reports a data-quality summary plus a short preview.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Upload.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"File size (%.1f MB) exceeds the %d MB limit",
			float64(header.Size)/(1024*1024), maxBytes/(1024*1024)))
		return
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		s.writeError(w, http.StatusBadRequest, "Only Excel (.xlsx, .xls) and CSV (.csv) files are allowed")
		return
	}

	ds, err := tabular.Read(header.Filename, file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	token := s.store.CreateSession(ds)
	log.Printf("[Server] Created session %s: %d columns, %d rows", token, len(ds.Columns), ds.RowCount())

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_token":      token,
		"columns":            ds.ColumnNames(),
		"validation_results": tabular.Validate(ds),
		"row_count":          ds.RowCount(),
		"preview":            ds.Preview(5),
	})
}

// handleClean applies the cleaning decisions, in request order, to a fresh
// copy of the session's raw dataset; repeated cleans always start over from
// the upload.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	token := core.SessionToken(chi.URLParam(r, "token"))
	ds, err := s.store.RawDataset(token)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req cleaningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	steps, err := decodeSteps(req.Decisions)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	cleaned := cleaning.Apply(ds, steps)
	if err := s.store.SetCleaned(token, cleaned); err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns": cleaned.ColumnNames(),
		"preview": cleaned.Preview(5),
	})
}

// decodeSteps turns a JSON decisions object into ordered cleaning steps,
// preserving the object's key order since later policies observe the dataset
// as mutated by earlier ones.
func decodeSteps(raw json.RawMessage) ([]cleaning.Step, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decisions must be a JSON object")
	}

	var steps []cleaning.Step
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		column, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in decisions", keyTok)
		}
		var policy string
		if err := dec.Decode(&policy); err != nil {
			return nil, err
		}
		steps = append(steps, cleaning.Step{Column: column, Policy: cleaning.Policy(policy)})
	}
	return steps, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	token := core.SessionToken(chi.URLParam(r, "token"))
	ds, err := s.store.CleanedDataset(token)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Cleaned session not found")
		return
	}

	var req statsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	variables := append([]string{req.DependentVar}, req.IndependentVars...)
	records, err := descriptive.Compute(ds, variables)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleOLS(w http.ResponseWriter, r *http.Request) {
	token := core.SessionToken(chi.URLParam(r, "token"))
	ds, err := s.store.CleanedDataset(token)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Cleaned session not found")
		return
	}

	var req olsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	model, err := regression.Fit(ds, req.DependentVar, req.IndependentVars, req.ModelName)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if err := s.store.StoreModel(token, model); err != nil {
		s.writeEngineError(w, err)
		return
	}

	log.Printf("[Server] Session %s: fitted model %q (%d terms, %d warnings)",
		token, model.ModelName, len(model.Coefficients), len(model.Warnings))
	s.writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	token := core.SessionToken(chi.URLParam(r, "token"))
	models, err := s.store.Models(token)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	token := core.SessionToken(chi.URLParam(r, "token"))
	name := core.ModelName(chi.URLParam(r, "name"))
	model, err := s.store.Model(token, name)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	token := core.SessionToken(chi.URLParam(r, "token"))
	s.store.DeleteSession(token)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "Session deleted successfully"})
}

func decodeJSON(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses:
// unknown references are client errors, undersized or degenerate fits are
// unprocessable, anything unexpected is a 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		s.writeError(w, http.StatusNotFound, err.Error())
	case core.IsInputError(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case core.IsNumericalError(err), errors.Is(err, core.ErrInsufficientData):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case apperrors.GetCode(err) == apperrors.CodeInvalidUpload:
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[Server] Internal error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
