// Package render turns the analyzed digest into a self-contained HTML page.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/ports"
)

//go:embed templates/digest.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/digest.html"))

// Renderer implements ports.Publisher by writing the page to a file.
type Renderer struct {
	path       string
	cfg        config.RenderConfig
	categories []config.CategoryConfig
	footer     string
	logger     *slog.Logger
}

var _ ports.Publisher = (*Renderer)(nil)

// NewRenderer returns a renderer writing to path.
func NewRenderer(path string, cfg config.RenderConfig, categories []config.CategoryConfig, footer string, log *slog.Logger) *Renderer {
	if log == nil {
		log = logging.Discard()
	}
	return &Renderer{path: path, cfg: cfg, categories: categories, footer: footer, logger: log}
}

// Render executes the page template for the digest.
func (r *Renderer) Render(d domain.Digest) ([]byte, error) {
	page := BuildPage(d, r.cfg, r.categories, r.footer)

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "digest.html", page); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Publish renders the digest and replaces the output file atomically.
func (r *Renderer) Publish(ctx context.Context, d domain.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := r.Render(d)
	if err != nil {
		return err
	}
	if err := writeAtomic(r.path, html); err != nil {
		return err
	}

	r.logger.Info("digest written", "path", r.path, "papers", len(d.Papers), "bytes", len(html))
	return nil
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it over path, so readers never see a partial page.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".digest-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}
