package identity

import (
	"errors"
	"os"

	"github.com/benmeehan/location-agent/pkg/file"
)

// DefaultNodeURL is used when the store carries no node URL.
const DefaultNodeURL = "http://127.0.0.1:9003"

// Identity holds the device identifier and the node the agent reports to.
// The JSON keys match the companion app's configuration store.
type Identity struct {
	DeviceID string `json:"device_id,omitempty"`
	NodeURL  string `json:"minima_node_url,omitempty"`
}

// Store defines methods for reading and writing the tracker identity.
// Load is called once per tracking session so edits take effect on the
// next start, never mid-session.
type Store interface {
	Load() (Identity, error)
	Save(identity Identity) error
}

// FileStore keeps the identity in a JSON file on disk.
type FileStore struct {
	path    string
	fileOps file.FileOperations
}

// NewFileStore initializes a FileStore backed by the given path.
func NewFileStore(path string, fileOps file.FileOperations) *FileStore {
	return &FileStore{
		path:    path,
		fileOps: fileOps,
	}
}

// Load reads the identity from the file. A missing file yields an empty
// device ID and the default node URL rather than an error; the device ID
// check happens per delivery, not here.
func (f *FileStore) Load() (Identity, error) {
	var identity Identity
	err := f.fileOps.ReadJsonFile(f.path, &identity)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Identity{}, err
	}

	if identity.NodeURL == "" {
		identity.NodeURL = DefaultNodeURL
	}
	return identity, nil
}

// Save writes the identity back to the file.
func (f *FileStore) Save(identity Identity) error {
	return f.fileOps.WriteJsonFile(f.path, identity)
}
