// Binary encoding for catalog snapshot blobs.
//
// A blob is one format byte followed by the payload:
//
//	formatGob  (0x01): gob-encoded ports.CatalogSnapshot
//
// Blobs starting with '{' are plain JSON, as written by early versions and by
// hand when seeding a vault.
package bbolt

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/corey/vlink/internal/ports"
)

const formatGob byte = 0x01

// encodeSnapshot encodes snap in the current format.
func encodeSnapshot(snap *ports.CatalogSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(formatGob)
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeSnapshot decodes any supported format.
func decodeSnapshot(data []byte) (*ports.CatalogSnapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty blob")
	}
	var snap ports.CatalogSnapshot
	switch data[0] {
	case formatGob:
		if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&snap); err != nil {
			return nil, err
		}
	case '{':
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown snapshot format 0x%02x", data[0])
	}
	return &snap, nil
}
