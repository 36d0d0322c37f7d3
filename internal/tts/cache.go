package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/logger"
)

// Cache stores synthesized audio by key. Get reports a miss with ok=false
// and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (res *Result, ok bool, err error)
	Put(ctx context.Context, key string, res *Result) error
}

// Key derives a cache key from the provider setup, language and text.
func Key(provider string, l lang.Language, text string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(l))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// DiskCache keeps one JSON file per entry under a directory.
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates the directory if needed. A zero ttl never expires.
func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tts cache dir: %w", err)
	}
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *DiskCache) Get(_ context.Context, key string) (*Result, bool, error) {
	p := c.path(key)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		_ = os.Remove(p)
		return nil, false, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		_ = os.Remove(p)
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *DiskCache) Put(_ context.Context, key string, res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Tiered checks caches in order and backfills the faster ones on a hit.
type Tiered []Cache

func (t Tiered) Get(ctx context.Context, key string) (*Result, bool, error) {
	var firstErr error
	for i, c := range t {
		res, ok, err := c.Get(ctx, key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			for _, faster := range t[:i] {
				_ = faster.Put(ctx, key, res)
			}
			return res, true, nil
		}
	}
	return nil, false, firstErr
}

func (t Tiered) Put(ctx context.Context, key string, res *Result) error {
	var errs []error
	for _, c := range t {
		if err := c.Put(ctx, key, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CachingSynthesizer serves repeated requests from a cache. Cache failures
// are logged and never fail a synthesis.
type CachingSynthesizer struct {
	inner Synthesizer
	cache Cache
	log   *logger.Logger
}

// WithCache wraps s with cache. A nil cache returns s unchanged.
func WithCache(s Synthesizer, cache Cache, log *logger.Logger) Synthesizer {
	if cache == nil {
		return s
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachingSynthesizer{inner: s, cache: cache, log: log}
}

func (c *CachingSynthesizer) Name() string { return c.inner.Name() }

func (c *CachingSynthesizer) Synthesize(ctx context.Context, text string, l lang.Language) (*Result, error) {
	key := Key(c.inner.Name(), l, text)
	if res, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("tts cache read failed", "error", err)
	} else if ok {
		c.log.Debug("tts cache hit", "key", key[:12])
		return res, nil
	}

	res, err := c.inner.Synthesize(ctx, text, l)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(context.WithoutCancel(ctx), key, res); err != nil {
		c.log.Warn("tts cache write failed", "error", err)
	}
	return res, nil
}
