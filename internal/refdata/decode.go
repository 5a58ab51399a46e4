package refdata

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
)

// ErrUnsupportedFormat is returned for dataset names without a known extension.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Format is the serialization of a dataset file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the format from a dataset name's extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// DecodeRainfall parses a rainfall table.
func DecodeRainfall(data []byte, format Format) (domain.RainfallTable, error) {
	var table domain.RainfallTable
	if err := decode(data, format, &table); err != nil {
		return domain.RainfallTable{}, fmt.Errorf("decode rainfall table: %w", err)
	}
	if table.Default <= 0 {
		return domain.RainfallTable{}, errors.New("decode rainfall table: defaultRainfall must be positive")
	}
	return table, nil
}

// DecodeCatalog parses a product catalog.
func DecodeCatalog(data []byte, format Format) (domain.Catalog, error) {
	var catalog domain.Catalog
	if err := decode(data, format, &catalog); err != nil {
		return nil, fmt.Errorf("decode product catalog: %w", err)
	}
	return catalog, nil
}

func decode(data []byte, format Format, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Digest returns a short content hash used to version datasets.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:4])
}
