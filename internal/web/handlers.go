package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/sizetable/internal/sheet"
	"github.com/JonMunkholm/sizetable/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size limit for form framing.
const multipartOverhead = 1 << 20

// maxTranslateNames caps one /api/translate request.
const maxTranslateNames = 200

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	info := s.service.Glossary()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.UploadPage(templates.PageInfo{
		Terms:          info.Terms,
		Origin:         info.Origin,
		SourceLanguage: info.SourceLanguage,
		TargetLanguage: info.TargetLanguage,
		Remote:         info.Remote,
		LabelSet:       s.cfg.Pipeline.LabelSet,
	}).Render(r.Context(), w)
}

// readUpload returns the multipart "file" part of the request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("%w: limit is %d bytes", sheet.ErrFileTooLarge, maxSize)
		}
		return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	return file, header.Filename, nil
}

// handlePreview builds tables from an upload and renders them as HTML.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.Process(r.Context(), name, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.TablesPreview(templates.PreviewParams{
		RunID:       result.RunID,
		FileName:    result.FileName,
		Tables:      result.Tables,
		RemoteError: result.RemoteError,
		DurationMS:  result.DurationMS,
	}).Render(r.Context(), w)
}

// handleBuildTables builds tables from an upload and returns them as JSON.
func (s *Server) handleBuildTables(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.Process(r.Context(), name, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	Names []string `json:"names"`
}

// TranslateResponse is the reply of POST /api/translate.
type TranslateResponse struct {
	Translations []string `json:"translations"`
}

// handleTranslate sends names to the remote translator.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Names) == 0 || len(req.Names) > maxTranslateNames {
		s.respondError(w, r, fmt.Errorf("invalid request: names must hold 1-%d entries", maxTranslateNames))
		return
	}

	out, err := s.service.Translate(r.Context(), req.Names)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{Translations: out})
}

// handleGlossary describes the active glossary and run capacity.
func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"glossary": s.service.Glossary(),
		"runs":     s.service.Limiter().Status(),
	})
}

// handleReloadGlossary reloads the glossary from its sources.
func (s *Server) handleReloadGlossary(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.Reload(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleImportGlossary stores an uploaded glossary CSV and reloads.
func (s *Server) handleImportGlossary(w http.ResponseWriter, r *http.Request) {
	file, _, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	n, err := s.service.ImportGlossary(r.Context(), file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": n,
		"glossary": s.service.Glossary(),
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
