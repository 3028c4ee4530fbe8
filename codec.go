package gaze

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Codec decodes a mood file or settings file.
type Codec interface {
	Unmarshal(data []byte, v any) error

	// ContentType names the format in logs and HTTP replies.
	ContentType() string
}

// JSONCodec decodes JSON. Mood files (.eye) are JSON.
type JSONCodec struct{}

// Unmarshal decodes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// YAMLCodec decodes YAML with gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Unmarshal decodes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{
		".eye":  JSONCodec{},
		".json": JSONCodec{},
		".yaml": YAMLCodec{},
		".yml":  YAMLCodec{},
	}
)

// RegisterCodec makes files ending in ext decode with c. Extensions match
// case-insensitively; ext includes the leading dot.
func RegisterCodec(ext string, c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[strings.ToLower(ext)] = c
}

// CodecFor picks the codec registered for a file's extension. Unknown
// extensions decode as JSON.
func CodecFor(path string) Codec {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	if c, ok := codecs[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}
	return JSONCodec{}
}

var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
)
