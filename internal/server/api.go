package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/prosentry/prosentry/internal/ingest"
)

// handleState returns the live run snapshot plus what data is staged.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	staged := len(s.loaded)
	name := s.loadedName
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot":       s.runner.Snapshot(),
		"stagedReadings": staged,
		"stagedFile":     name,
	})
}

// handleUpload accepts a multipart CSV, stages its readings for the
// next start, and resets pattern memory: learned adjustments from one
// data set must not leak into another.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	parsed, err := ingest.ParseCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(parsed.Readings) == 0 {
		writeError(w, http.StatusBadRequest, "no usable rows in file")
		return
	}

	s.mu.Lock()
	s.loaded = parsed.Readings
	s.loadedName = header.Filename
	s.loadedSrc = "csv"
	s.mu.Unlock()

	s.runner.ResetPatterns()
	log.Printf("staged %d readings from %s (%d rows dropped)",
		len(parsed.Readings), header.Filename, parsed.Dropped)

	writeJSON(w, http.StatusOK, map[string]any{
		"readings": len(parsed.Readings),
		"dropped":  parsed.Dropped,
		"fileName": header.Filename,
	})
}

// handleStart begins a run over the staged readings, or over the
// built-in demo sequence when ?source=demo.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	s.mu.Lock()
	readings, source, fileName := s.loaded, s.loadedSrc, s.loadedName
	s.mu.Unlock()

	demo := r.URL.Query().Get("source") == "demo" || len(readings) == 0
	if demo {
		readings, source, fileName = ingest.DemoSequence(), "demo", ""
	}

	id, err := s.runner.Start(readings, source, fileName)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	// The demo is a fresh data source, so its learned adjustments
	// start clean. A rejected start must leave the active run's
	// patterns alone, hence the reset happens only after Start.
	if demo {
		s.runner.ResetPatterns()
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": id})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if err := s.runner.Stop(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stopped": true})
}

func (s *Server) handleAlertAck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	s.runner.AcknowledgeAlert()
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
