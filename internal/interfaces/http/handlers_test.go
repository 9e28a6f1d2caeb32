package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dvelkov/invoice-expert/internal/batch"
)

type stubRunner struct {
	gotStart int
	gotFiles []batch.InputFile
	result   *batch.Result
	err      error
}

func (r *stubRunner) Run(ctx context.Context, files []batch.InputFile, startNumber int) (*batch.Result, error) {
	r.gotFiles = files
	r.gotStart = startNumber
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func newTestServer(runner BatchRunner) *Server {
	return NewServer(
		ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Limits{MaxFiles: 10, MaxFileSize: 1 << 20, DefaultStartNumber: 1},
		runner,
		zap.NewNop(),
	)
}

func multipartBody(t *testing.T, startNumber string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if startNumber != "" {
		require.NoError(t, w.WriteField("start_number", startNumber))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateBatch(t *testing.T) {
	runner := &stubRunner{result: &batch.Result{
		Rows: []batch.ReportRow{{
			OldName: "a.pdf",
			NewName: "1023_Acme.pdf",
			Vendor:  "Acme",
		}},
		Files:     []batch.RenamedFile{{Name: "1023_Acme.pdf", Data: []byte("%PDF")}},
		Succeeded: 1,
	}}
	srv := newTestServer(runner)

	body, contentType := multipartBody(t, "1023", map[string][]byte{"a.pdf": []byte("%PDF")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1023, runner.gotStart)
	require.Len(t, runner.gotFiles, 1)
	assert.Equal(t, "a.pdf", runner.gotFiles[0].Name)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestCreateBatchRejectsNonPDF(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	body, contentType := multipartBody(t, "", map[string][]byte{"notes.txt": []byte("hello")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBatchRejectsBadStartNumber(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	body, contentType := multipartBody(t, "0", map[string][]byte{"a.pdf": []byte("%PDF")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBatchRejectsEmptyUpload(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	body, contentType := multipartBody(t, "5", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadsBeforeAnyRun(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	for _, path := range []string{
		"/api/v1/batches/last",
		"/api/v1/batches/last/report",
		"/api/v1/batches/last/archive",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestDownloadsAfterRun(t *testing.T) {
	runner := &stubRunner{result: &batch.Result{
		Rows:      []batch.ReportRow{{OldName: "a.pdf", NewName: "1_Acme.pdf", Vendor: "Acme"}},
		Files:     []batch.RenamedFile{{Name: "1_Acme.pdf", Data: []byte("%PDF")}},
		Succeeded: 1,
	}}
	srv := newTestServer(runner)

	body, contentType := multipartBody(t, "1", map[string][]byte{"a.pdf": []byte("%PDF")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/batches/last/report", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/batches/last/archive", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, zipContentType, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
