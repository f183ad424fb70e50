package qr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer writes QR PNGs for verification URLs.
type Renderer struct {
	dir  string
	size int
}

// NewRenderer creates a Renderer writing into dir, creating it if needed.
func NewRenderer(dir string) (*Renderer, error) {
	if dir == "" {
		return nil, fmt.Errorf("qr: output directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("qr: create %s: %w", dir, err)
	}
	return &Renderer{dir: dir, size: 256}, nil
}

// VerificationURL builds the public URL encoded into the QR image.
func VerificationURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + id
}

// WritePNG renders the QR image for url and writes {dir}/{id}.png,
// returning the written path.
func (r *Renderer) WritePNG(url, id string) (string, error) {
	path := filepath.Join(r.dir, id+".png")
	if err := qrcode.WriteFile(url, qrcode.Medium, r.size, path); err != nil {
		return "", fmt.Errorf("qr: render %s: %w", id, err)
	}
	return path, nil
}
