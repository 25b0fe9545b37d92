package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"storefront-service/pkg/config"
)

const (
	// MaxDimension rejects absurdly large source images before resizing.
	MaxDimension = 6000
	// TargetMax is the bounding box images are shrunk into (never enlarged).
	TargetMax = 1600
	// JPEGQuality for the re-encoded output.
	JPEGQuality = 82
)

var (
	ErrFileTooLarge  = errors.New("file too large")
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image dimensions too large")
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9/_.-]+`)
var repeatedSlashes = regexp.MustCompile(`/+`)

// SafeSubpath normalizes an externally supplied folder or key into a path
// safe to join under a store's directory: no traversal, no absolute paths,
// only [a-zA-Z0-9/_.-]. The ".." stripping runs before the character filter,
// and the filter substitutes "-" rather than deleting, so no new ".."
// sequence can form. Dots must survive sanitizing so stored keys like
// "banners/<ts>-<sha>.jpg" round-trip through it unchanged.
func SafeSubpath(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	cleaned = strings.TrimLeft(cleaned, "/")
	cleaned = strings.ReplaceAll(cleaned, "..", "")
	cleaned = unsafePathChars.ReplaceAllString(cleaned, "-")
	cleaned = repeatedSlashes.ReplaceAllString(cleaned, "/")
	// Stripping ".." can surface a new leading slash.
	return strings.TrimLeft(cleaned, "/")
}

// SavedImage describes the stored result of one upload.
type SavedImage struct {
	Key       string
	Filename  string
	Folder    *string
	MimeType  string
	SizeBytes int64
	Width     int
	Height    int
	SHA256    string
	AbsPath   string
}

// Store writes processed uploads under a per-store directory tree on the
// local filesystem.
type Store struct {
	root           string
	maxUploadBytes int64
}

func New(cfg *config.Config) *Store {
	return &Store{
		root:           cfg.Storage.Root,
		maxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
}

// SaveImage runs the upload pipeline: validate size, decode (which validates
// the bytes are an image), check dimensions, hash the original bytes,
// auto-orient, shrink inside the target box and re-encode as JPEG under
// <root>/<storeID>/<folder>/<timestamp>-<sha12>.jpg.
func (s *Store) SaveImage(storeID uint, folder string, data []byte) (*SavedImage, error) {
	if int64(len(data)) > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidImage
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		return nil, ErrImageTooLarge
	}

	sum := sha256.Sum256(data)
	sha := hex.EncodeToString(sum[:])

	// Fit scales down only, preserving aspect ratio.
	if bounds.Dx() > TargetMax || bounds.Dy() > TargetMax {
		img = imaging.Fit(img, TargetMax, TargetMax, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	cleanFolder := SafeSubpath(folder)
	filename := fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), sha[:12])

	key := filename
	if cleanFolder != "" {
		key = cleanFolder + "/" + filename
	}

	storeDir := filepath.Join(s.root, strconv.FormatUint(uint64(storeID), 10))
	targetDir := storeDir
	if cleanFolder != "" {
		targetDir = filepath.Join(storeDir, filepath.FromSlash(cleanFolder))
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	absPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(absPath, out.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	finalBounds := img.Bounds()
	saved := &SavedImage{
		Key:       key,
		Filename:  filename,
		MimeType:  "image/jpeg",
		SizeBytes: int64(out.Len()),
		Width:     finalBounds.Dx(),
		Height:    finalBounds.Dy(),
		SHA256:    sha,
		AbsPath:   absPath,
	}
	if cleanFolder != "" {
		saved.Folder = &cleanFolder
	}
	return saved, nil
}

// ResolvePath maps a stored key back to its absolute path, re-sanitizing the
// key so a crafted value cannot escape the store's directory.
func (s *Store) ResolvePath(storeID uint, key string) string {
	safeKey := SafeSubpath(key)
	return filepath.Join(s.root, strconv.FormatUint(uint64(storeID), 10), filepath.FromSlash(safeKey))
}
