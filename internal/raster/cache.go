package raster

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/lumen-desktop/lumen/internal/icons"
)

// defaultMemEntries bounds the in-memory cache. Sessions touch at most the
// number of distinct visible icons, so this is generous.
const defaultMemEntries = 512

// Cache memoizes rasterized icons. Lookups hit, in order: the in-memory LRU,
// the on-disk PNG cache, and finally a fresh render. Concurrent requests for
// the same key are coalesced so exactly one render runs.
type Cache struct {
	// dir is the persistent cache directory; empty disables persistence and
	// the cache degrades to in-memory only.
	dir string

	mem   *lru.Cache[string, *image.RGBA]
	group singleflight.Group

	// render is swapped by tests to observe or stub rendering.
	render func(icons.ResolvedIcon, int) (*image.RGBA, error)
}

// NewCache creates a Cache persisting under dir. The directory is created if
// missing; failure to create it disables persistence rather than erroring,
// per the degrade-gracefully policy for cache storage.
func NewCache(dir string) *Cache {
	mem, err := lru.New[string, *image.RGBA](defaultMemEntries)
	if err != nil {
		// lru.New fails only for a non-positive size.
		panic(err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			dir = ""
		}
	}

	return &Cache{dir: dir, mem: mem, render: Render}
}

// Get returns the size×size bitmap for a resolved icon, rendering and
// memoizing it on first request. The bitmap is shared: callers must treat it
// as read-only.
func (c *Cache) Get(icon icons.ResolvedIcon, size int) (*image.RGBA, error) {
	key := Key(icon.Path, size)

	if img, ok := c.mem.Get(key); ok {
		return img, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent request may have populated the cache while this call
		// waited on the flight group.
		if img, ok := c.mem.Get(key); ok {
			return img, nil
		}

		if img, ok := c.loadPersisted(key); ok {
			c.mem.Add(key, img)
			return img, nil
		}

		img, err := c.render(icon, size)
		if err != nil {
			return nil, err
		}

		// Round the fresh render through its PNG form before memoizing.
		// Premultiplied alpha does not survive PNG encoding exactly, so the
		// encoded form is the canonical bitmap: first run and every later
		// run must observe identical bytes.
		img, encoded := canonicalize(img)
		if encoded != nil {
			c.persist(key, encoded) // best-effort
		}
		c.mem.Add(key, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*image.RGBA), nil
}

// Key derives the deterministic cache key for a resolved path and target
// size. The same key names the persisted file, so repeated runs skip
// re-rendering entirely.
func Key(path string, size int) string {
	h := sha256.Sum256([]byte(path + "\x00" + strconv.Itoa(size)))
	return hex.EncodeToString(h[:])
}

// loadPersisted reads a previously persisted bitmap.
func (c *Cache) loadPersisted(key string) (*image.RGBA, bool) {
	if c.dir == "" {
		return nil, false
	}

	f, err := os.Open(c.cachePath(key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, false
	}
	return toRGBA(img), true
}

// canonicalize encodes the bitmap as PNG and decodes it back, returning the
// decoded image and the bytes to persist. On an encoding failure the
// original bitmap is returned with nil bytes so memory and disk never
// diverge.
func canonicalize(img *image.RGBA) (*image.RGBA, []byte) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return img, nil
	}

	decoded, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return img, nil
	}
	return toRGBA(decoded), buf.Bytes()
}

// toRGBA converts any decoded image to the premultiplied form callers work
// with. Decoding the same bytes always yields the same pixels, so this
// conversion is deterministic.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// persist writes the encoded PNG to the cache directory. Failures are
// swallowed: an unwritable cache degrades to in-memory-only for the session.
func (c *Cache) persist(key string, data []byte) {
	if c.dir == "" {
		return
	}

	tmp, err := os.CreateTemp(c.dir, key+".tmp*")
	if err != nil {
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return
	}
	if err := tmp.Close(); err != nil {
		return
	}

	// Rename keeps concurrent readers from seeing a partial file.
	_ = os.Rename(tmp.Name(), c.cachePath(key))
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".png")
}

// PersistenceEnabled reports whether the on-disk half of the cache is
// active. Used by status output.
func (c *Cache) PersistenceEnabled() bool {
	return c.dir != ""
}
