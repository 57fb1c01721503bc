// Package encoding packs serialized tree values into compact, tamper-
// evident strings for persistence and transport.
//
// The canonical representation of a serialized tree is JSON text; this
// package wraps the same JSON-compatible values (maps, slices, primitives)
// in msgpack and protects them in one of two modes:
//   - Signed (default): base64 + HMAC signature - visible but tamper-proof
//   - Encrypted: AES-256-GCM - fully opaque
package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors surfaced to callers.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid packed format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: decryption failed")
)

// Encoder handles packing and unpacking of serialized tree values.
type Encoder struct {
	key []byte
	gcm cipher.AEAD
}

// NewEncoder creates an encoder with the given key. Keys shorter than
// 32 bytes are stretched with SHA-256 to fit AES-256.
func NewEncoder(key []byte) (*Encoder, error) {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Encoder{key: key, gcm: gcm}, nil
}

// Encode packs a JSON-compatible value. If sensitive is true the payload
// is encrypted; otherwise it is signed but readable.
func (e *Encoder) Encode(v any, sensitive bool) (string, error) {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	if sensitive {
		return e.encrypt(packed)
	}
	return e.sign(packed), nil
}

// Decode unpacks an encoded string, verifying its signature or decrypting
// it as appropriate. Maps come back as map[string]any, matching the shapes
// the deserializer consumes.
func (e *Encoder) Decode(encoded string, sensitive bool) (any, error) {
	var packed []byte
	var err error
	if sensitive {
		packed, err = e.decrypt(encoded)
	} else {
		packed, err = e.verify(encoded)
	}
	if err != nil {
		return nil, err
	}

	var v any
	if err := msgpack.Unmarshal(packed, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize coerces msgpack's untyped maps into map[string]any trees.
// Non-string keys are stringly rare in this format and dropped.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, c := range val {
			if ks, ok := k.(string); ok {
				out[ks] = normalize(c)
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, c := range val {
			out[k] = normalize(c)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, c := range val {
			out[i] = normalize(c)
		}
		return out
	}
	return v
}

// sign creates a signed but visible encoding: base64.signature.
func (e *Encoder) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	mac := hmac.New(sha256.New, e.key)
	mac.Write(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
	return b64 + "." + sig
}

// verify checks the signature and returns the payload.
func (e *Encoder) verify(encoded string) ([]byte, error) {
	parts := strings.SplitN(encoded, ".", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	mac := hmac.New(sha256.New, e.key)
	mac.Write(data)
	expected := mac.Sum(nil)[:16]

	if !hmac.Equal(sig, expected) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

// encrypt produces an AES-256-GCM encoding with a random nonce prefix.
func (e *Encoder) encrypt(data []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := e.gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// decrypt decodes and decrypts the payload.
func (e *Encoder) decrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if len(ciphertext) < e.gcm.NonceSize() {
		return nil, ErrInvalidFormat
	}

	nonce := ciphertext[:e.gcm.NonceSize()]
	ciphertext = ciphertext[e.gcm.NonceSize():]

	plain, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
