package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// layoutPrefix namespaces layout entries.
const layoutPrefix = "layout"

// Hash computes a SHA-256 hash of the input data as 64 hex characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// LayoutKey returns the key of the layout output for dot under engine.
func LayoutKey(engine, dot string) string {
	return layoutPrefix + ":" + engine + ":" + Hash([]byte(dot))
}
