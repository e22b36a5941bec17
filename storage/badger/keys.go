package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/issuegraph/core"
)

// Key prefixes for different data types
const (
	recordPrefix        = "rec"
	recordUpdatedPrefix = "recu"
)

// makeRecordKey generates a key for a record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", recordPrefix, id))
}

// makeKindPrefix returns the updated-at index prefix for one record kind.
// Format: prefix:kind:
func makeKindPrefix(kind core.RecordKind) []byte {
	return []byte(recordUpdatedPrefix + ":" + kind.String() + ":")
}

// makeUpdatedKey generates a composite key for the per-kind updated-at index.
// Format: prefix:kind:timestamp:id
func makeUpdatedKey(kind core.RecordKind, updatedAt time.Time, id core.ID) []byte {
	prefixBytes := makeKindPrefix(kind)
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, prefixBytes)
	// Flip the sign bit so pre-epoch (and zero) times still sort before later ones
	binary.BigEndian.PutUint64(buf[offset:], uint64(updatedAt.UnixMicro())^(1<<63))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeKindSeekKey returns a key that sorts after every index key of the kind.
// Reverse iterators seek here to start from the most recent entry.
func makeKindSeekKey(kind core.RecordKind) []byte {
	prefixBytes := makeKindPrefix(kind)
	buf := make([]byte, len(prefixBytes)+17)
	offset := copy(buf, prefixBytes)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}
