package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	log "github.com/sirupsen/logrus"

	"inpaint/models"
	"inpaint/utils"
)

// ErrUndecodableImage is returned when the original of a pair is not a readable image.
var ErrUndecodableImage = errors.New("original is not a decodable image")

const tokenBytes = 8

// Payload An uploaded file as received from the client
type Payload struct {
	Name string
	Data []byte
}

// Writer Writes uploaded files into a single upload directory
type Writer struct {
	root string
}

// NewWriter Create a writer for root, creating the directory if needed
func NewWriter(root string) (*Writer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	log.WithFields(log.Fields{"path": abs}).Info("Upload directory ready")
	return &Writer{root: abs}, nil
}

// Root Absolute path of the upload directory
func (w *Writer) Root() string {
	return w.root
}

// SavePair Write original and mask to disk.
// The original is decoded first; if that fails nothing is written.
// Files written before an I/O error are left in place.
func (w *Writer) SavePair(original Payload, mask Payload) (models.FileInfo, models.FileInfo, error) {
	_, width, height, err := utils.ImageDimensions(original.Data)
	if err != nil {
		return models.FileInfo{}, models.FileInfo{}, fmt.Errorf("%w: %s", ErrUndecodableImage, err.Error())
	}

	originalInfo, err := w.save(original)
	if err != nil {
		return models.FileInfo{}, models.FileInfo{}, fmt.Errorf("save original: %w", err)
	}
	size := int64(len(original.Data))
	originalInfo.FileSize = &size
	originalInfo.Width = &width
	originalInfo.Height = &height

	maskInfo, err := w.save(mask)
	if err != nil {
		return models.FileInfo{}, models.FileInfo{}, fmt.Errorf("save mask: %w", err)
	}

	return originalInfo, maskInfo, nil
}

func (w *Writer) save(p Payload) (models.FileInfo, error) {
	filename, err := uniqueFilename(p.Name)
	if err != nil {
		return models.FileInfo{}, err
	}
	path := filepath.Join(w.root, filename)

	// O_EXCL: never overwrite an existing upload
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := file.Write(p.Data); err != nil {
		_ = file.Close()
		return models.FileInfo{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return models.FileInfo{}, fmt.Errorf("failed to sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		return models.FileInfo{}, fmt.Errorf("failed to close file: %w", err)
	}

	log.WithFields(log.Fields{
		"file":         filename,
		"bytes":        len(p.Data),
		"content_type": mimetype.Detect(p.Data).String(),
	}).Debug("File written to upload directory")

	return models.FileInfo{Filename: filename, Path: path}, nil
}

// uniqueFilename Prefix the base of name with a random hex token
func uniqueFilename(name string) (string, error) {
	token := make([]byte, tokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generate filename token: %w", err)
	}
	return hex.EncodeToString(token) + "_" + sanitizeName(name), nil
}

// sanitizeName Strip directories so the file always lands directly in the upload root
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	switch base {
	case "", ".", "..", "/":
		return "upload"
	}
	return base
}
