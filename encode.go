package chainz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for exported artifacts.
type Format string

// Supported formats.
const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

// FormatFor picks the format from a file extension. Unknown extensions
// default to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".msgpack", ".mp":
		return MsgPack
	default:
		return JSON
	}
}

// Encode serializes v in the given format. JSON output is indented.
func Encode(format Format, v any) ([]byte, error) {
	switch format {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case YAML:
		return yaml.Marshal(v)
	case MsgPack:
		return msgpack.Marshal(v)
	default:
		return nil, fmt.Errorf("chainz: unknown format %q", format)
	}
}

// Decode deserializes data in the given format into a value of type T.
func Decode[T any](format Format, data []byte) (T, error) {
	var value T
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &value)
	case YAML:
		err = yaml.Unmarshal(data, &value)
	case MsgPack:
		err = msgpack.Unmarshal(data, &value)
	default:
		err = fmt.Errorf("chainz: unknown format %q", format)
	}
	return value, err
}

// Export writes v to path in the format chosen by FormatFor, replacing any
// existing content.
func Export(path string, v any) error {
	data, err := Encode(FormatFor(path), v)
	if err != nil {
		return fmt.Errorf("chainz: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("chainz: export %s: %w", path, err)
	}
	return nil
}
