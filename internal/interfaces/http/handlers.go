package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dvelkov/invoice-expert/internal/batch"
	"github.com/dvelkov/invoice-expert/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	zipContentType  = "application/zip"

	reportFileName  = "invoice_report.xlsx"
	archiveFileName = "renamed_invoices.zip"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchResponse summarizes one batch run.
type BatchResponse struct {
	Rows      []batch.ReportRow `json:"rows"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	StartedAt string            `json:"started_at"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleCreateBatch handles POST /api/v1/batches. It accepts a multipart
// form with a "files" field holding the PDFs and an optional "start_number"
// field, runs the batch, retains the outcome and responds with the rows.
func (s *Server) handleCreateBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.badRequest(c, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		s.badRequest(c, "no files uploaded")
		return
	}
	if len(uploads) > s.limits.MaxFiles {
		s.badRequest(c, fmt.Sprintf("too many files: %d exceeds limit of %d", len(uploads), s.limits.MaxFiles))
		return
	}

	startNumber := s.limits.DefaultStartNumber
	if raw := c.PostForm("start_number"); raw != "" {
		startNumber, err = strconv.Atoi(raw)
		if err != nil || startNumber < 1 {
			s.badRequest(c, "start_number must be a positive integer")
			return
		}
	}

	files := make([]batch.InputFile, 0, len(uploads))
	for _, upload := range uploads {
		if !strings.EqualFold(filepath.Ext(upload.Filename), ".pdf") {
			s.badRequest(c, fmt.Sprintf("%s: only PDF files are accepted", upload.Filename))
			return
		}
		if upload.Size > s.limits.MaxFileSize {
			s.badRequest(c, fmt.Sprintf("%s: file exceeds size limit", upload.Filename))
			return
		}

		f, err := upload.Open()
		if err != nil {
			s.serverError(c, fmt.Errorf("open upload %s: %w", upload.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.serverError(c, fmt.Errorf("read upload %s: %w", upload.Filename, err))
			return
		}

		files = append(files, batch.InputFile{Name: upload.Filename, Data: data})
	}

	started := time.Now().UTC()
	result, err := s.runner.Run(c.Request.Context(), files, startNumber)
	if err != nil {
		s.serverError(c, err)
		return
	}

	reportBytes, err := report.WriteWorkbook(result.Rows)
	if err != nil {
		s.serverError(c, fmt.Errorf("build report: %w", err))
		return
	}
	archiveBytes, err := report.WriteArchive(result.Files)
	if err != nil {
		s.serverError(c, fmt.Errorf("build archive: %w", err))
		return
	}

	s.storeRun(&lastRun{
		rows:     result.Rows,
		report:   reportBytes,
		archive:  archiveBytes,
		finished: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: BatchResponse{
			Rows:      result.Rows,
			Succeeded: result.Succeeded,
			Failed:    result.Failed,
			StartedAt: started.Format(time.RFC3339),
		},
	})
}

// handleLastBatch handles GET /api/v1/batches/last.
func (s *Server) handleLastBatch(c *gin.Context) {
	run := s.loadRun()
	if run == nil {
		s.notFound(c, "no batch has been processed yet")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"rows":        run.rows,
			"finished_at": run.finished.Format(time.RFC3339),
		},
	})
}

// handleDownloadReport handles GET /api/v1/batches/last/report.
func (s *Server) handleDownloadReport(c *gin.Context) {
	run := s.loadRun()
	if run == nil {
		s.notFound(c, "no batch has been processed yet")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFileName))
	c.Data(http.StatusOK, xlsxContentType, run.report)
}

// handleDownloadArchive handles GET /api/v1/batches/last/archive.
func (s *Server) handleDownloadArchive(c *gin.Context) {
	run := s.loadRun()
	if run == nil {
		s.notFound(c, "no batch has been processed yet")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveFileName))
	c.Data(http.StatusOK, zipContentType, run.archive)
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func (s *Server) notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Success: false, Error: msg})
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
}
