package extract

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// renderPDF rasterizes up to maxPages pages of a PDF to JPEG images for the
// vision request. Pages that fail to render are skipped.
func renderPDF(data []byte, maxPages int, logger *zap.Logger) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount > maxPages {
		pageCount = maxPages
	}

	var images [][]byte
	for page := 0; page < pageCount; page++ {
		img, err := doc.Image(page)
		if err != nil {
			logger.Warn("Failed to render page",
				zap.Int("page", page),
				zap.Error(err))
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			logger.Warn("Failed to encode page to JPEG",
				zap.Int("page", page),
				zap.Error(err))
			continue
		}
		images = append(images, buf.Bytes())
	}

	if len(images) == 0 {
		return nil, ErrNoPages
	}

	return images, nil
}
