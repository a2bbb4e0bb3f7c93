package manifest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	ChecksumMD5    = "md5"
	ChecksumSHA1   = "sha1"
	ChecksumSHA256 = "sha256"
	ChecksumBLAKE3 = "blake3"

	DefaultChecksumAlgorithm = ChecksumMD5
)

// Checksum is a digest of an element's content, kept as lower-case hex.
type Checksum struct {
	Type  string
	Value string
}

// IsZero reports whether the checksum is unset.
func (c Checksum) IsZero() bool {
	return c.Type == "" && c.Value == ""
}

func (c Checksum) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Type + ":" + c.Value
}

// NewChecksum normalises type and value.
func NewChecksum(typ, value string) Checksum {
	return Checksum{
		Type:  strings.ToLower(strings.TrimSpace(typ)),
		Value: strings.ToLower(strings.TrimSpace(value)),
	}
}

// SupportedChecksum reports whether algorithm can be computed.
func SupportedChecksum(algorithm string) bool {
	_, err := newHasher(algorithm)
	return err == nil
}

// ComputeChecksum digests r with the named algorithm.
func ComputeChecksum(algorithm string, r io.Reader) (Checksum, error) {
	h, err := newHasher(algorithm)
	if err != nil {
		return Checksum{}, err
	}
	if _, err := io.Copy(h, r); err != nil {
		return Checksum{}, fmt.Errorf("compute %s checksum: %w", algorithm, err)
	}
	return NewChecksum(algorithm, hex.EncodeToString(h.Sum(nil))), nil
}

func newHasher(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case ChecksumMD5:
		return md5.New(), nil
	case ChecksumSHA1:
		return sha1.New(), nil
	case ChecksumSHA256:
		return sha256.New(), nil
	case ChecksumBLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}
