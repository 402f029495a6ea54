package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// Source resolves an image identifier to a decoded pixel buffer in the
// pipeline's fixed channel order. Implementations decide what an identifier
// means (a local path, an object-store key); the pipeline never touches
// storage directly.
type Source interface {
	Resolve(id string) (*image.NRGBA, error)
}

// FileSource is a Source that treats identifiers as filesystem paths and
// caches decoded buffers to avoid redundant disk reads.
//
// FileSource is safe for concurrent use by multiple goroutines. Cached
// buffers remain in memory until explicitly removed via Evict or Clear;
// long batch runs should evict items as they finish.
type FileSource struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA
}

// NewFileSource creates an empty, ready-to-use FileSource.
func NewFileSource() *FileSource {
	return &FileSource{
		images: make(map[string]*image.NRGBA),
	}
}

// Resolve returns the cached buffer for path, decoding from disk on first
// use. Supported formats are PNG, JPEG, and GIF.
//
// The decoded image is normalized to *image.NRGBA with bounds anchored at
// (0,0), so all downstream indexing is origin-free.
func (s *FileSource) Resolve(path string) (*image.NRGBA, error) {
	s.mu.RLock()
	if img, ok := s.images[path]; ok {
		s.mu.RUnlock()
		return img, nil
	}
	s.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Clone normalizes any decoded type (YCbCr, Paletted, Gray, ...) to
	// NRGBA anchored at the origin.
	img := imaging.Clone(decoded)

	s.mu.Lock()
	s.images[path] = img
	s.mu.Unlock()

	return img, nil
}

// Evict removes a single cached buffer. Unknown paths are ignored.
func (s *FileSource) Evict(path string) {
	s.mu.Lock()
	delete(s.images, path)
	s.mu.Unlock()
}

// Clear drops every cached buffer, freeing the associated memory.
func (s *FileSource) Clear() {
	s.mu.Lock()
	s.images = make(map[string]*image.NRGBA)
	s.mu.Unlock()
}
