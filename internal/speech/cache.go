package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/hammamikhairi/narrator/internal/logger"
)

// AudioCache is a thread-safe two-tier cache (in-memory + badger on disk)
// for synthesized audio. The cache key is sha256(voice:rate:text) so a voice
// or rate change causes misses until it is switched back.
//
// The disk tier is only opened when a directory is given.
type AudioCache struct {
	mu      sync.RWMutex
	entries map[string][]byte // hash -> WAV bytes
	log     *logger.Logger
	voice   string // included in every cache key
	db      *badger.DB
	hits    int64
	misses  int64
}

// NewAudioCache creates an audio cache. If dir is empty the disk layer is
// disabled entirely (pure in-memory).
func NewAudioCache(voice, dir string, log *logger.Logger) (*AudioCache, error) {
	c := &AudioCache{
		entries: make(map[string][]byte),
		log:     log,
		voice:   voice,
	}

	if dir != "" {
		db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("opening audio cache %s: %w", dir, err)
		}
		c.db = db
		log.Debug("cache: disk tier at %s", dir)
	}

	return c, nil
}

// Get returns cached audio for the given text and true, or nil and false.
// It checks the in-memory map first, then falls back to the disk cache.
func (c *AudioCache) Get(rate int, text string) ([]byte, bool) {
	key := c.hashKey(rate, text)

	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		c.log.Debug("cache hit (mem): %s (%d bytes)", truncate(text, 40), len(data))
		return data, true
	}

	if diskData, diskOK := c.readDisk(key); diskOK {
		// Promote to in-memory for faster subsequent hits.
		c.mu.Lock()
		c.entries[key] = diskData
		c.hits++
		c.mu.Unlock()
		c.log.Debug("cache hit (disk): %s (%d bytes)", truncate(text, 40), len(diskData))
		return diskData, true
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Put stores audio data for the given text in memory and, when enabled,
// on disk.
func (c *AudioCache) Put(rate int, text string, audio []byte) {
	key := c.hashKey(rate, text)

	c.mu.Lock()
	c.entries[key] = audio
	size := len(c.entries)
	c.mu.Unlock()

	c.log.Debug("cache store (mem): %s (%d bytes, %d entries)", truncate(text, 40), len(audio), size)
	c.writeDisk(key, audio)
}

// Has returns true if audio for the text is cached (memory or disk).
func (c *AudioCache) Has(rate int, text string) bool {
	key := c.hashKey(rate, text)

	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return true
	}
	_, ok = c.readDisk(key)
	return ok
}

// Len returns the number of in-memory cached entries.
func (c *AudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Close releases the disk tier.
func (c *AudioCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *AudioCache) hashKey(rate int, text string) string {
	h := sha256.Sum256([]byte(c.voice + ":" + strconv.Itoa(rate) + ":" + text))
	return hex.EncodeToString(h[:])
}

func (c *AudioCache) readDisk(key string) ([]byte, bool) {
	if c.db == nil {
		return nil, false
	}
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.log.Error("cache: disk read failed for %s: %v", key[:12], err)
		}
		return nil, false
	}
	return data, true
}

func (c *AudioCache) writeDisk(key string, audio []byte) {
	if c.db == nil {
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), audio)
	})
	if err != nil {
		c.log.Error("cache: disk write failed for %s: %v", key[:12], err)
		return
	}
	c.log.Debug("cache store (disk): %s (%d bytes)", key[:12], len(audio))
}
