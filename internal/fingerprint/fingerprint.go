// Package fingerprint derives deterministic content hashes for validated arrays.
//
// A Fingerprint is the 128-bit XXH3 hash of the array's dtype, shape and raw
// bytes. It is not cryptographic: it resists accidental collisions, not
// adversarial ones.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"

	"github.com/born-ml/contract/internal/schema"
	"github.com/born-ml/contract/internal/tensor"
)

// Size is the fingerprint length in bytes.
const Size = 16

// Fingerprint is a fixed-length content hash used as a cache key.
type Fingerprint [Size]byte

// Of fingerprints a validated array.
func Of(v schema.ValidatedArray) Fingerprint {
	return OfRaw(v.Raw())
}

// OfRaw fingerprints an arbitrary array.
func OfRaw(raw *tensor.RawTensor) Fingerprint {
	shape := raw.Shape()

	// dtype (1) + rank (8) + dims (8 each)
	header := make([]byte, 0, 9+8*len(shape))
	header = append(header, byte(raw.DType()))
	header = binary.LittleEndian.AppendUint64(header, uint64(len(shape)))
	for _, dim := range shape {
		header = binary.LittleEndian.AppendUint64(header, uint64(dim))
	}

	h := xxh3.New()
	_, _ = h.Write(header)
	_, _ = h.Write(raw.Data())
	sum := h.Sum128()

	var fp Fingerprint
	binary.BigEndian.PutUint64(fp[:8], sum.Hi)
	binary.BigEndian.PutUint64(fp[8:], sum.Lo)
	return fp
}

// String returns the hex encoding of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 8 hex characters, for logs.
func (f Fingerprint) Short() string {
	return hex.EncodeToString(f[:4])
}

// IsZero reports whether f is the zero fingerprint.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}
