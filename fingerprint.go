package avro

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// FingerprintAlgo names a schema fingerprint algorithm.
type FingerprintAlgo string

const (
	// FingerprintCRC64 is the 64-bit Rabin fingerprint used by Avro single-object
	// encoding, returned as 8 little-endian bytes.
	FingerprintCRC64 FingerprintAlgo = "crc-64-avro"

	// FingerprintSHA256 is SHA-256 over the canonical form.
	FingerprintSHA256 FingerprintAlgo = "sha256"

	// FingerprintBLAKE2b is BLAKE2b-256 over the canonical form.
	FingerprintBLAKE2b FingerprintAlgo = "blake2b-256"
)

// crc64Empty is the Rabin fingerprint of the empty input.
const crc64Empty uint64 = 0xc15d213aa4d7a795

var crc64Table = func() [256]uint64 {
	var t [256]uint64
	for i := range t {
		fp := uint64(i)
		for j := 0; j < 8; j++ {
			fp = (fp >> 1) ^ (crc64Empty & -(fp & 1))
		}
		t[i] = fp
	}
	return t
}()

// rabin computes the CRC-64-AVRO fingerprint of data.
func rabin(data []byte) uint64 {
	fp := crc64Empty
	for _, b := range data {
		fp = (fp >> 8) ^ crc64Table[byte(fp)^b]
	}
	return fp
}

// CRC64 returns the CRC-64-AVRO fingerprint of the canonical form.
func (s *Schema) CRC64() uint64 {
	return rabin([]byte(s.canonical))
}

// Fingerprint returns the fingerprint of the canonical form.
// Unknown algorithms return nil.
func (s *Schema) Fingerprint(algo FingerprintAlgo) []byte {
	canonical := []byte(s.canonical)
	switch algo {
	case FingerprintCRC64:
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, rabin(canonical))
		return out
	case FingerprintSHA256:
		sum := sha256.Sum256(canonical)
		return sum[:]
	case FingerprintBLAKE2b:
		sum := blake2b.Sum256(canonical)
		return sum[:]
	}
	return nil
}

// FingerprintHex returns Fingerprint as a lowercase hex string.
func (s *Schema) FingerprintHex(algo FingerprintAlgo) string {
	return hex.EncodeToString(s.Fingerprint(algo))
}
