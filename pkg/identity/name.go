package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// DefaultPrefix namespaces registry keys.
const DefaultPrefix = "ultimatethumb"

// Hash returns the hex SHA-1 of a canonical payload.
func Hash(payload []byte) string {
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// Basename returns the file name part of a source path, extension included.
func Basename(source string) string {
	return source[strings.LastIndex(source, "/")+1:]
}

// Compute returns the name of a request together with the payload it was
// hashed from. The name has the form "<hash>/<basename>".
func Compute(source string, opts map[string]any) (string, []byte, error) {
	payload, err := Canonical(source, opts)
	if err != nil {
		return "", nil, err
	}
	return Hash(payload) + "/" + Basename(source), payload, nil
}

// CacheKey returns the registry key for a name.
func CacheKey(prefix, name string) string {
	return prefix + ":" + name
}
