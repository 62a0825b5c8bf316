package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// ImageCache keeps decoded score pages in memory, keyed by path.
//
// A page is usually checked system by system, so the same file is requested
// once per system. The cache makes those requests decode it only once.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached pages remain in memory until removed via Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Parameters:
//   - path: File path of a PNG, JPEG or GIF page. The exact string is the
//     cache key.
//
// Returns:
//   - image.Image: The decoded page.
//   - error: Non-nil if the file cannot be opened or decoded.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached pages.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes every page from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes one page from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// PageInfo describes a loaded page.
type PageInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// InkRatio is the share of pixels that are ink once binarized.
	InkRatio float64 `json:"ink_ratio"`
}

// LoadPageInfo loads a page and measures it.
//
// Parameters:
//   - cache: The cache to load through. Must not be nil.
//   - path: Path to the page image.
//   - threshold: Gray level below which a pixel is ink.
func LoadPageInfo(cache *ImageCache, path string, threshold uint8) (*PageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bin := Binarize(img, threshold)
	b := bin.Bounds()
	ink := 0
	for _, v := range bin.Pix {
		if v == Ink {
			ink++
		}
	}

	info := &PageInfo{Path: path, Width: b.Dx(), Height: b.Dy()}
	if n := b.Dx() * b.Dy(); n > 0 {
		info.InkRatio = float64(ink) / float64(n)
	}
	return info, nil
}
