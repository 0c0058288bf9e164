// Package rasterize turns datasheet files into data URLs suitable for
// vision model payloads. PDF pages are rendered with MuPDF; raster image
// formats are passed through untouched.
package rasterize

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"sheetwatch/internal/services"
)

// Options bounds the rendering work per document.
type Options struct {
	// MaxPages caps how many leading pages are rendered from a PDF.
	MaxPages int
	// DPI controls render resolution for PDF pages.
	DPI int
}

// DataURLs converts a datasheet into one data URL per page. PDFs are rendered
// page by page up to opts.MaxPages; other recognized formats yield a single
// entry with the file bytes as-is.
func DataURLs(ctx context.Context, path string, opts Options) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfDataURLs(ctx, path, opts)
	}
	return imageDataURL(path)
}

func pdfDataURLs(ctx context.Context, path string, opts Options) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, services.Wrap(services.ErrRasterization, "rasterize", "open", "failed to open PDF", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return nil, services.Wrap(services.ErrRasterization, "rasterize", "open", "PDF has no pages", nil)
	}
	if opts.MaxPages > 0 && pages > opts.MaxPages {
		pages = opts.MaxPages
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = 150
	}

	urls := make([]string, 0, pages)
	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(page, float64(dpi))
		if err != nil {
			return nil, services.Wrap(services.ErrRasterization, "rasterize", "render",
				fmt.Sprintf("failed to render page %d", page+1), err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, services.Wrap(services.ErrRasterization, "rasterize", "encode",
				fmt.Sprintf("failed to encode page %d", page+1), err)
		}
		urls = append(urls, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
	}
	return urls, nil
}

func imageDataURL(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrRasterization, "rasterize", "read", "failed to read image", err)
	}
	mime := mimeForExtension(filepath.Ext(path))
	if mime == "" {
		return nil, services.Wrap(services.ErrRasterization, "rasterize", "read",
			fmt.Sprintf("unsupported image format %q", filepath.Ext(path)), nil)
	}
	return []string{"data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)}, nil
}

func mimeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".bmp":
		return "image/bmp"
	case ".gif":
		return "image/gif"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return ""
	}
}
