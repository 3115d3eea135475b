package jobs

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job ids are ULIDs: 48 bits of millisecond timestamp followed by 80 bits
// of randomness, Crockford base32 encoded into 26 characters. The first
// two random bytes carry a per-millisecond sequence so ids minted in the
// same millisecond still sort in creation order.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu  sync.Mutex
	lastMs  uint64
	lastSeq uint16
)

func generateULID() string {
	ulidMu.Lock()
	ms := uint64(time.Now().UnixMilli())
	if ms == lastMs {
		lastSeq++
	} else {
		lastMs, lastSeq = ms, 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ms<<16)
	_, _ = rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeULID(b)
}

// encodeULID writes the 128 bits of b as 26 base32 digits, most
// significant first. The leading digit only holds 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
