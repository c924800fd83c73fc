package render

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/matzehuels/splice/pkg/errors"
)

// rsvgBinary converts the SVG that Graphviz produces into raster and print
// formats. It ships with librsvg (apt install librsvg2-bin, brew install librsvg).
const rsvgBinary = "rsvg-convert"

// ToPDF converts an SVG graph drawing to a single page PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convertSVG(svg, "pdf", nil)
}

// ToPNG rasterizes an SVG graph drawing. scale multiplies the drawing's
// natural size and must be positive.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", scale)
	}
	return convertSVG(svg, "png", []string{"--zoom", fmt.Sprintf("%.2f", scale)})
}

// convertSVG pipes svg through rsvg-convert. A missing binary is reported as
// UNSUPPORTED so callers can fall back to svg output.
func convertSVG(svg []byte, format string, flags []string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output needs %s from librsvg on PATH", format, rsvgBinary)
	}

	cmd := exec.Command(bin, append([]string{"--format", format}, flags...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgBinary, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}
