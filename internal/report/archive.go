package report

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/dvelkov/invoice-expert/internal/batch"
)

// WriteArchive packs renamed files into a ZIP archive and returns its
// bytes. Entry content is the original document, untouched; only the name
// inside the container changes.
func WriteArchive(files []batch.RenamedFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, file := range files {
		w, err := zw.Create(file.Name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %q: %w", file.Name, err)
		}
		if _, err := w.Write(file.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %q: %w", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
