package badger

import (
	"net/url"
	"strconv"
	"strings"
)

// Key prefixes for different data types
const (
	signalEmbeddingPrefix = "sigemb"
)

// makeSignalEmbeddingKey generates a key for a cached signal embedding.
// Format: prefix:model:id
func makeSignalEmbeddingKey(model string, id int64) []byte {
	prefix := makeModelPrefix(model)
	buf := make([]byte, 0, len(prefix)+20)
	buf = append(buf, prefix...)
	return strconv.AppendInt(buf, id, 10)
}

// makeModelPrefix generates the iteration prefix for all embeddings of a model.
// Format: prefix:model:
func makeModelPrefix(model string) []byte {
	return []byte(signalEmbeddingPrefix + ":" + escapeModel(model) + ":")
}

// escapeModel keeps model names containing ':' (ollama tags) from
// colliding with the key separator. Escaping is injective, so distinct
// models never share a key.
func escapeModel(model string) string {
	return url.QueryEscape(model)
}

// parseSignalEmbeddingID extracts the signal id from a key produced by
// makeSignalEmbeddingKey. Returns false for malformed keys.
func parseSignalEmbeddingID(key []byte) (int64, bool) {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
