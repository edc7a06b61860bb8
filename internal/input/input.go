// Package input reads the documents dates are extracted from: plain text of
// any flavor and charset, or PDF files whose text layer is extracted first.
// Text is always returned as UTF-8.
package input

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/htmlindex"
)

const utf8Text = "text/plain; charset=utf-8"

// ErrUnsupported is returned for content that is neither text nor PDF.
var ErrUnsupported = errors.New("input: unsupported content type")

// Stdin is the name used for standard input.
const Stdin = "-"

// Document is a read input with its provenance.
type Document struct {
	// Name is the base file name, or "-" for standard input.
	Name   string
	Path   string
	MIME   string
	SHA256 string
	Size   int64
	Text   string
}

// ReadFile reads path, or standard input when path is "" or "-".
func ReadFile(path string) (*Document, error) {
	if path == "" || path == Stdin {
		return Read(Stdin, os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	doc, err := Read(filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Read consumes r and returns its text. The content type is sniffed rather
// than taken from the name.
func Read(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", name, err)
	}

	doc := &Document{
		Name:   name,
		Size:   int64(len(data)),
		SHA256: fmt.Sprintf("%x", sha256.Sum256(data)),
	}
	if len(data) == 0 {
		doc.MIME = "text/plain"
		return doc, nil
	}

	mt := mimetype.Detect(data)
	doc.MIME = mt.String()
	switch {
	case mt.Is("application/pdf"):
		text, err := pdfText(data)
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", name, err)
		}
		doc.Text = text
	case isText(mt):
		text, err := decode(data, mt.String())
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", name, err)
		}
		doc.Text = text
	case mt.Is("application/octet-stream") && utf8.Valid(data):
		// Stray control bytes (NUL from OCR or PDF dumps) defeat sniffing;
		// valid UTF-8 is still text and the normalizer drops the controls.
		doc.MIME = utf8Text
		doc.Text = string(data)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupported, name, mt.String())
	}
	return doc, nil
}

// isText walks the MIME hierarchy; csv, json, html and friends all descend
// from text/plain.
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// decode converts data to UTF-8 using the charset parameter of its MIME type.
func decode(data []byte, mediaType string) (string, error) {
	_, params, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return string(data), nil
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return string(data), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("charset %s: %w", charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(out), nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return buf.String(), nil
}

// HashFile computes the hex-encoded SHA-256 and size of the file at path
// without loading it into memory.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), n, nil
}
