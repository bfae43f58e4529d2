// Package db persists generated thumbnails in a bolt database so that
// repeated runs over unchanged files skip the image pipeline.
package db

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"lukechampine.com/blake3"
)

var bucketName = []byte("Thumbnails")

func Connect(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
}

func Init(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
}

// HashFile returns the 256-bit blake3 digest of the file at path.
func HashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

type ThumbnailCache struct {
	db *bolt.DB
}

func NewThumbnailCache(db *bolt.DB) (*ThumbnailCache, error) {
	if err := Init(db); err != nil {
		return nil, fmt.Errorf("cannot initialise thumbnail cache: %w", err)
	}

	return &ThumbnailCache{db: db}, nil
}

// Get returns the thumbnail stored under key, if any.
func (c *ThumbnailCache) Get(key []byte) (string, bool, error) {
	var value string
	var found bool

	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s doesn't exist", string(bucketName))
		}

		// the returned slice is only valid for the lifetime of the transaction
		if v := bucket.Get(key); v != nil {
			value = string(v)
			found = true
		}

		return nil
	})

	return value, found, err
}

func (c *ThumbnailCache) Put(key []byte, thumbnail string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}

		return bucket.Put(key, []byte(thumbnail))
	})
}
