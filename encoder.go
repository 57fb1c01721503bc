package treewire

import (
	"errors"
	"fmt"

	"github.com/pthm/treewire/lib/encoding"
)

// ErrPackingDisabled reports Pack/Unpack use on a transformer constructed
// without WithPackingKey.
var ErrPackingDisabled = errors.New("treewire: packing requires WithPackingKey")

// Pack serializes a node tree and wraps it in the compact packed encoding:
// msgpack, HMAC-signed by default or AES-GCM encrypted when sensitive.
// JSON (Serialize) remains the canonical stable format; Pack carries the
// same structures for callers persisting trees outside their trust
// boundary.
func (t *Transformer) Pack(node any, sensitive bool) (string, error) {
	if t.enc == nil {
		return "", ErrPackingDisabled
	}
	v, err := t.serializeNode(node, 0)
	if err != nil {
		return "", err
	}
	out, err := t.enc.Encode(v, sensitive)
	if err != nil {
		return "", fmt.Errorf("treewire: pack: %w", err)
	}
	return out, nil
}

// Unpack verifies (or decrypts) a packed encoding and reconstructs the
// node tree through the same deserialization machinery as the JSON path.
func (t *Transformer) Unpack(packed string, sensitive bool) (any, error) {
	if t.enc == nil {
		return nil, ErrPackingDisabled
	}
	v, err := t.enc.Decode(packed, sensitive)
	if err != nil {
		return nil, fmt.Errorf("treewire: unpack: %w", err)
	}
	return t.deserializeValue(v, 0)
}

// IsPackingError checks whether err came from the packed-format layer:
// tampering, truncation or a wrong key.
func IsPackingError(err error) bool {
	return errors.Is(err, encoding.ErrInvalidFormat) ||
		errors.Is(err, encoding.ErrSignatureInvalid) ||
		errors.Is(err, encoding.ErrDecryptFailed)
}
