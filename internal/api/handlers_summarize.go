package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"papersum/internal/chunker"
	"papersum/internal/parser"
	"papersum/internal/pipeline"
	"papersum/internal/store"
	"papersum/internal/summarize"
)

// summarizeResponse is the JSON body for a successful summarization.
type summarizeResponse struct {
	*pipeline.Result
	Title string `json:"title"`
	ID    string `json:"id,omitempty"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		if errors.Is(err, parser.ErrNoText) {
			jsonError(w, "document contains no extractable text", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "parse failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if title := r.FormValue("title"); title != "" {
		doc.Title = title
	}

	level := summarize.ParseLevel(r.FormValue("length"))
	if r.FormValue("detailed") == "true" {
		level = summarize.LevelDetailed
	}

	opts := pipeline.Options{
		Level:      level,
		Method:     chunker.ParseMethod(r.FormValue("chunk_method")),
		Sequential: r.FormValue("parallel") == "false",
		Citations:  r.FormValue("citations") == "true",
	}

	result, err := s.summarizer.Summarize(r.Context(), doc, opts)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) && stageErr.Stage == pipeline.StageExtract {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("summarization failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := summarizeResponse{Result: result, Title: doc.Title}

	if r.FormValue("save") == "true" && s.store != nil {
		saved := &store.SavedSummary{
			ID:             store.ContentID(doc.Text(), s.summarizerModel(), string(level)),
			Title:          doc.Title,
			Filename:       filename,
			Model:          s.summarizerModel(),
			Level:          string(level),
			Summary:        result.Summary,
			References:     result.References,
			ReferenceCount: result.ReferenceCount,
			Keywords:       result.Keywords,
			HasCitations:   result.HasCitations,
			ChunkCount:     result.ChunkCount,
			TokenCount:     result.TokenCount,
		}
		if err := s.store.Put(saved); err != nil {
			s.log.Error("save summary failed", "id", saved.ID, "error", err)
		} else {
			resp.ID = saved.ID
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) summarizerModel() string {
	if s.openai != nil {
		return s.openai.Model()
	}
	return ""
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
