// Package pdf rasterizes PDF pages into images so they can go through OCR.
package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Rasterizer converts a PDF into one image per page, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([][]byte, error)
}

// PopplerRasterizer shells out to pdftoppm from the poppler-utils package.
type PopplerRasterizer struct {
	binary string
	dpi    int
}

// NewPopplerRasterizer locates pdftoppm on PATH. Returns an error when the
// binary is missing so the caller can decide whether PDF support is required.
func NewPopplerRasterizer() (*PopplerRasterizer, error) {
	path, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("pdf: pdftoppm not found on PATH: %w", err)
	}
	return &PopplerRasterizer{binary: path, dpi: 150}, nil
}

// Rasterize writes the PDF to a scratch dir, renders each page to JPEG and
// returns the pages sorted by page number.
func (p *PopplerRasterizer) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "studybuddy-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("pdf: creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("pdf: writing scratch file: %w", err)
	}

	// Produces page-1.jpg, page-2.jpg, ... in dir.
	cmd := exec.CommandContext(ctx, p.binary,
		"-jpeg", "-r", strconv.Itoa(p.dpi), src, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdf: pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pdf: reading scratch dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "page-") && strings.HasSuffix(e.Name(), ".jpg") {
			names = append(names, e.Name())
		}
	}
	sortPages(names)

	pages := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("pdf: reading page %s: %w", name, err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// sortPages orders pdftoppm output numerically. Lexical order would put
// page-10 before page-2.
func sortPages(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return pageNumber(names[i]) < pageNumber(names[j])
	})
}

func pageNumber(name string) int {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".jpg")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}
