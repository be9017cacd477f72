package raster

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// JPEGQuality is used when saving JPEG files.
const JPEGQuality = 95

// Loader provides thread-safe caching of decoded images keyed by path.
//
// Underlay images are large and shared by every render, so they are decoded
// once and kept until evicted. Images are stored as decoded; callers that
// mutate pixels must clone first.
type Loader struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, decoding it from disk on first use.
//
// The path is cleaned before use, so "a/./b.png" and "a/b.png" share an
// entry. Supported formats are PNG, JPEG and GIF.
func (l *Loader) Load(path string) (image.Image, error) {
	path = filepath.Clean(path)

	l.mu.RLock()
	if img, ok := l.images[path]; ok {
		l.mu.RUnlock()
		return img, nil
	}
	l.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.images[path] = img
	l.mu.Unlock()

	return img, nil
}

// Evict removes an image from the cache. Unknown paths are ignored.
func (l *Loader) Evict(path string) {
	l.mu.Lock()
	delete(l.images, filepath.Clean(path))
	l.mu.Unlock()
}

// Clear removes all images from the cache.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.images = make(map[string]image.Image)
	l.mu.Unlock()
}

// Len is the number of cached images.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.images)
}

// Open decodes an image from disk without caching it.
func Open(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Save encodes an image to path, choosing the format from the extension.
// Parent directories are created as needed.
func Save(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var opts []imaging.EncodeOption
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		opts = append(opts, imaging.JPEGQuality(JPEGQuality))
	}

	if err := imaging.Save(img, path, opts...); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
