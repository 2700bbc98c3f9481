package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a stage-prefixed cache key, "graph:<hex>" and friends.
// The parts (a content hash plus the stage's key options) are serialized
// to JSON and hashed together, so two keys can only collide on a full
// SHA-256 collision.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 content hash of data as a 64-character hex
// string. Graph and drawing hashes throughout the pipeline use this form.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
