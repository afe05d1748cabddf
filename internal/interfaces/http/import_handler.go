package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sewasangat/import-service/internal/core/domain"
	"github.com/sewasangat/import-service/internal/core/services/importer"
	apperrors "github.com/sewasangat/import-service/internal/pkg/errors"
)

// maxUploadSize caps import spreadsheets at 32 MB
const maxUploadSize = 32 << 20

// handleSubmitImport accepts a multipart spreadsheet upload, parses it
// through the row-source collaborator and hands the rows to the pipeline.
// The response returns synchronously; processing continues in background.
func (s *Server) handleSubmitImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, apperrors.InvalidFile("file too large or invalid form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.InvalidFile("no file provided"))
		return
	}
	defer file.Close()

	parser, err := s.parsers.ForFile(header.Filename)
	if err != nil {
		writeError(w, apperrors.UnsupportedFormat(header.Filename))
		return
	}

	result, err := parser.ParseStream(r.Context(), file)
	if err != nil {
		writeError(w, apperrors.FileParseError(err))
		return
	}
	if len(result.Records) == 0 {
		writeError(w, apperrors.EmptyImport())
		return
	}

	out, err := s.pipeline.Submit(r.Context(), importer.SubmitInput{
		Records:  result.Records,
		AreaCode: strings.TrimSpace(r.FormValue("area_code")),
		ActorID:  actorID(r),
	})
	if err != nil {
		if errors.Is(err, importer.ErrEmptySubmission) {
			writeError(w, apperrors.EmptyImport())
			return
		}
		s.logger.Error("import submission failed", "error", err)
		writeError(w, apperrors.InternalWrap(err, "failed to start import"))
		return
	}

	s.logger.Info("import accepted",
		slog.String("job_id", out.JobID),
		slog.String("filename", header.Filename),
		slog.Int("total", out.Total),
		slog.Int("skipped_rows", result.SkippedRows))

	writeJSON(w, http.StatusAccepted, out)
}

// handlePollImport returns the current job snapshot. Unknown and evicted ids
// both come back as 404.
func (s *Server) handlePollImport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		writeError(w, apperrors.BadRequest("missing job id"))
		return
	}

	snap, err := s.pipeline.Poll(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, importer.ErrJobNotFound) {
			writeError(w, apperrors.JobNotFound(jobID))
			return
		}
		s.logger.Error("poll failed", slog.String("job_id", jobID), "error", err)
		writeError(w, apperrors.InternalWrap(err, "failed to load job"))
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handleNextBadge issues the next badge number for a centre/gender pattern
func (s *Server) handleNextBadge(w http.ResponseWriter, r *http.Request) {
	area := strings.TrimSpace(r.URL.Query().Get("area"))
	centre := strings.TrimSpace(r.URL.Query().Get("centre"))
	gender := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("gender")))
	temporary := r.URL.Query().Get("temporary") == "true"

	if area == "" || centre == "" {
		writeError(w, apperrors.BadRequest("area and centre are required"))
		return
	}
	if !domain.IsValidGender(gender) {
		writeError(w, apperrors.BadRequest("gender must be MALE or FEMALE"))
		return
	}

	pattern := importer.BadgePattern(area, centre, gender, temporary)
	badge, err := s.badges.Allocate(r.Context(), pattern)
	if err != nil {
		s.logger.Error("badge allocation failed", slog.String("pattern", pattern), "error", err)
		writeError(w, apperrors.InternalWrap(err, "failed to allocate badge"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"pattern":      pattern,
		"badge_number": badge,
	})
}

// actorID resolves the audit identity for written records
func actorID(r *http.Request) string {
	if actor := strings.TrimSpace(r.Header.Get("X-Actor-ID")); actor != "" {
		return actor
	}
	return "system"
}
