package storage

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/schemadb/schemadb/pkg/domain"
)

const (
	// Magic bytes identifying the engine data file format
	MagicBytes = "SDBF"
	// Current format version
	FormatVersion = 1
	// File extension for engine data files
	FileExtension = ".sdb"
)

// FileHeader is the fixed-size header of an engine data file
type FileHeader struct {
	Magic    [4]byte
	Version  uint8
	Flags    uint8
	Reserved [2]byte
}

// WriteHeader writes the data file header to w
func WriteHeader(w io.Writer) error {
	header := FileHeader{
		Magic:   [4]byte{'S', 'D', 'B', 'F'},
		Version: FormatVersion,
	}
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the data file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}
	return &header, nil
}

// StorageData is the serialized engine state: documents per collection plus
// index descriptors (inverted data is rebuilt on load)
type StorageData struct {
	Collections map[string]map[string]domain.Document `msgpack:"collections"`
	Indexes     map[string][]domain.IndexDefinition   `msgpack:"indexes,omitempty"`
	Metadata    map[string]interface{}                `msgpack:"metadata,omitempty"`
}

// NewStorageData creates an empty storage data structure
func NewStorageData() *StorageData {
	return &StorageData{
		Collections: make(map[string]map[string]domain.Document),
		Indexes:     make(map[string][]domain.IndexDefinition),
		Metadata:    make(map[string]interface{}),
	}
}
