package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/schemadb/schemadb/pkg/domain"
)

// SaveToFile serializes every collection and index descriptor to a single
// lz4-compressed MessagePack file. The write is staged through a temp file
// and renamed so readers never see a partial file.
func (e *Engine) SaveToFile(filename string) error {
	e.mu.RLock()
	storageData := NewStorageData()
	for collName, collection := range e.collections {
		docs := make(map[string]domain.Document, len(collection.Documents))
		for docID, doc := range collection.Documents {
			docs[docID] = doc.Clone()
		}
		storageData.Collections[collName] = docs
	}
	e.mu.RUnlock()

	storageData.Indexes = e.indexEngine.ExportDescriptors()

	msgpackData, err := msgpack.Marshal(storageData)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	compressedData = compressedData[:n]

	var buf bytes.Buffer
	if err := WriteHeader(&buf); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := buf.Write(compressedData); err != nil {
		return fmt.Errorf("failed to write compressed data: %w", err)
	}

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename data file: %w", err)
	}

	e.logger.Infow("saved engine state",
		"file", filename, "collections", len(storageData.Collections),
		"bytes", len(compressedData))
	return nil
}

// LoadFromFile restores engine state from a data file written by SaveToFile.
// A missing file is not an error: the engine starts empty.
func (e *Engine) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := ReadHeader(file); err != nil {
		return fmt.Errorf("invalid file header: %w", err)
	}
	compressedData, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read compressed data: %w", err)
	}

	decompressedData, err := decompressBlock(compressedData)
	if err != nil {
		return fmt.Errorf("failed to decompress data: %w", err)
	}

	var storageData StorageData
	if err := msgpack.Unmarshal(decompressedData, &storageData); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	e.mu.Lock()
	e.collections = make(map[string]*domain.Collection, len(storageData.Collections))
	for collName, docs := range storageData.Collections {
		collection := domain.NewCollection(collName)
		for docID, doc := range docs {
			collection.Documents[docID] = doc
		}
		e.collections[collName] = collection
	}
	e.mu.Unlock()

	if len(storageData.Indexes) > 0 {
		e.indexEngine.ImportDescriptors(storageData.Indexes)
	}

	e.mu.RLock()
	for collName, collection := range e.collections {
		e.indexEngine.RebuildCollection(collName, collection.Documents)
	}
	e.mu.RUnlock()

	e.logger.Infow("loaded engine state",
		"file", filename, "collections", len(storageData.Collections))
	return nil
}

// decompressBlock uncompresses an lz4 block, growing the destination buffer
// until it fits
func decompressBlock(compressed []byte) ([]byte, error) {
	size := len(compressed) * 4
	if size == 0 {
		return nil, fmt.Errorf("empty compressed block")
	}
	for attempts := 0; attempts < 8; attempts++ {
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(compressed, dst)
		if err == nil {
			return dst[:n], nil
		}
		size *= 2
	}
	return nil, fmt.Errorf("compressed block too large")
}
