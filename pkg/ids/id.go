package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/luxfi/crypto/hashing"
)

// ID represents a unique identifier
type ID [32]byte

// NewFromData derives a deterministic ID by hashing arbitrary data.
func NewFromData(data []byte) ID {
	var id ID
	copy(id[:], hashing.ComputeHash256(data))
	return id
}

// GenerateTestID creates a random ID for testing
func GenerateTestID() ID {
	var id ID
	rand.Read(id[:])
	return id
}

// String returns the hex representation of the ID
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the byte representation of the ID
func (id ID) Bytes() []byte {
	return id[:]
}

// Short returns the first 20 bytes as hex, used for address-style display.
func (id ID) Short() string {
	return hex.EncodeToString(id[:20])
}

// FromString creates an ID from a hex string
func FromString(s string) (ID, error) {
	var id ID
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(bytes) != 32 {
		return id, fmt.Errorf("invalid ID length: expected 32, got %d", len(bytes))
	}
	copy(id[:], bytes)
	return id, nil
}
