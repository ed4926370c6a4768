// Package transcript loads call transcripts from files for the CLI.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxFileSize caps transcript files read from disk.
const maxFileSize = 10 << 20

var (
	ErrEmpty    = errors.New("transcript file has no text")
	ErrTooLarge = errors.New("transcript file too large")
	ErrNotText  = errors.New("transcript file is not UTF-8 text")
)

// ReadFile returns the trimmed text of path. PDFs have their text layer
// extracted; every other file is read as UTF-8 text.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = readPDF(path)
	} else {
		text, err = readText(path)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	return string(data), nil
}
