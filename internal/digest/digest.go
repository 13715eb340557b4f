package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/zeebo/blake3"
)

// Supported digest algorithm names.
const (
	MD5    = "MD5"
	SHA1   = "SHA-1"
	SHA256 = "SHA-256"
	SHA384 = "SHA-384"
	SHA512 = "SHA-512"
	BLAKE3 = "BLAKE3"
)

// ErrUnknownAlgorithm is returned when the requested algorithm is not supported.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Digester computes content digests for byte streams under a fixed
// algorithm and an optional modifier. The modifier namespaces the metadata
// key so digests produced by different deployments don't collide. The zero
// modifier is valid.
//
// A Digester is a value type and safe for concurrent use.
type Digester struct {
	algorithm string
	modifier  string
}

// New returns a Digester for the named algorithm.
func New(algorithm, modifier string) (Digester, error) {
	if _, err := newHash(algorithm); err != nil {
		return Digester{}, err
	}
	return Digester{algorithm: algorithm, modifier: modifier}, nil
}

// Algorithm returns the algorithm name the digester was built with.
func (d Digester) Algorithm() string {
	return d.algorithm
}

// Key returns the metadata name under which a parse records this
// digester's output.
func (d Digester) Key() string {
	if d.modifier == "" {
		return "digest:" + d.algorithm
	}
	return "digest:" + d.modifier + ":" + d.algorithm
}

// Digest streams r through the algorithm and returns the lowercase hex
// digest. Identical bytes always produce identical strings. A read error
// surfaces as-is; no partial digest is ever returned.
func (d Digester) Digest(r io.Reader) (string, error) {
	h, err := newHash(d.algorithm)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("digest %s: %w", d.algorithm, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes digests an in-memory byte slice.
func (d Digester) DigestBytes(b []byte) string {
	// A bytes read never fails, so the only error path is unreachable:
	// the algorithm was validated in New.
	h, _ := newHash(d.algorithm)
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}
