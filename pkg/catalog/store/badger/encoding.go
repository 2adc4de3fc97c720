package badger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so prefixed keys organize the catalog into
// logical namespaces. The secondary-index keys ("r:", "c:", "n:") carry the
// uniqueness constraints: a create writes its index key inside the same
// transaction that checks it, so there is never a window where two entries
// share a (parent, name) or (folder, filename) pair.
//
// Data Type            Prefix  Key Format                     Value
// =========================================================================
// Folder               "f:"    f:<folderUUID>                 Folder (JSON)
// Volume Root Index    "r:"    r:<volumeID>                   folderUUID (bytes)
// Children Index       "c:"    c:<parentUUID>:<childName>     folderUUID (bytes)
// Asset                "a:"    a:<assetUUID>                  Asset (JSON)
// Filename Index       "n:"    n:<folderUUID>:<filename>      assetUUID (bytes)

const (
	prefixFolder   = "f:"
	prefixRoot     = "r:"
	prefixChild    = "c:"
	prefixAsset    = "a:"
	prefixFilename = "n:"
)

// keyFolder generates a key for folder data: "f:<uuid>"
func keyFolder(id uuid.UUID) []byte {
	return []byte(prefixFolder + id.String())
}

// keyRoot generates a key for a volume root index entry: "r:<volumeID>"
func keyRoot(volumeID string) []byte {
	return []byte(prefixRoot + volumeID)
}

// keyChild generates a key for a child index entry: "c:<parentUUID>:<name>"
func keyChild(parentID uuid.UUID, name string) []byte {
	return []byte(prefixChild + parentID.String() + ":" + name)
}

// keyAsset generates a key for asset data: "a:<uuid>"
func keyAsset(id uuid.UUID) []byte {
	return []byte(prefixAsset + id.String())
}

// keyFilename generates a key for a filename index entry: "n:<folderUUID>:<filename>"
func keyFilename(folderID uuid.UUID, filename string) []byte {
	return []byte(prefixFilename + folderID.String() + ":" + filename)
}

// ============================================================================
// Value Encoding
// ============================================================================

func encodeFolder(folder *catalog.Folder) ([]byte, error) {
	data, err := json.Marshal(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to encode folder: %w", err)
	}
	return data, nil
}

func decodeFolder(data []byte) (*catalog.Folder, error) {
	var folder catalog.Folder
	if err := json.Unmarshal(data, &folder); err != nil {
		return nil, fmt.Errorf("failed to decode folder: %w", err)
	}
	return &folder, nil
}

func encodeAsset(asset *catalog.Asset) ([]byte, error) {
	data, err := json.Marshal(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to encode asset: %w", err)
	}
	return data, nil
}

func decodeAsset(data []byte) (*catalog.Asset, error) {
	var asset catalog.Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("failed to decode asset: %w", err)
	}
	return &asset, nil
}

// encodeID stores a uuid as its 16 raw bytes.
func encodeID(id uuid.UUID) []byte {
	b := id
	return b[:]
}

// decodeID reads a uuid from its 16 raw bytes.
func decodeID(data []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode id: %w", err)
	}
	return id, nil
}
