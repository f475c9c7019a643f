package backup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/schemadb/schemadb/pkg/domain"
)

const (
	// Magic bytes identifying a backup file
	MagicBytes = "SDBK"
	// Current backup file format version
	FormatVersion = 1
	// File extension for backup files
	FileExtension = ".sdbk"
)

// fileHeader is the fixed-size header of a backup file
type fileHeader struct {
	Magic    [4]byte
	Version  uint8
	Flags    uint8
	Reserved [2]byte
}

// WriteFile serializes a backup set to an lz4-compressed MessagePack file
func WriteFile(filename string, set *domain.BackupSet) error {
	msgpackData, err := msgpack.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress backup: %w", err)
	}
	compressedData = compressedData[:n]

	var buf bytes.Buffer
	header := fileHeader{
		Magic:   [4]byte{'S', 'D', 'B', 'K'},
		Version: FormatVersion,
	}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write backup header: %w", err)
	}
	if _, err := buf.Write(compressedData); err != nil {
		return fmt.Errorf("failed to write backup data: %w", err)
	}

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename backup file: %w", err)
	}
	return nil
}

// ReadFile loads a backup set written by WriteFile
func ReadFile(filename string) (*domain.BackupSet, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	var header fileHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read backup header: %w", err)
	}
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid backup format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported backup version: %d", header.Version)
	}

	compressedData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup data: %w", err)
	}

	size := len(compressedData) * 4
	var decompressedData []byte
	for attempts := 0; attempts < 8; attempts++ {
		dst := make([]byte, size)
		n, uncompressErr := lz4.UncompressBlock(compressedData, dst)
		if uncompressErr == nil {
			decompressedData = dst[:n]
			break
		}
		size *= 2
	}
	if decompressedData == nil {
		return nil, fmt.Errorf("failed to decompress backup data")
	}

	var set domain.BackupSet
	if err := msgpack.Unmarshal(decompressedData, &set); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	return &set, nil
}
