package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// Service key errors.
var (
	// ErrVerificationFailed is returned when a server-supplied value does
	// not verify against the known service public key: the recovered block
	// has invalid padding or a non-numeric message.
	ErrVerificationFailed = errors.New("crypto: service key verification failed")

	// ErrMessageTooLong is returned when a value cannot fit the service
	// key's modulus with the minimum padding.
	ErrMessageTooLong = errors.New("crypto: message too long for service key")
)

// ServiceKey is the service's fixed RSA public key, known to every client
// in advance. The server proves it authored the key-exchange values by
// transforming them with the matching private key; VerifyAndUnpad inverts
// that transform. The key is injected as configuration (hex modulus and
// exponent), never compiled into the engine.
type ServiceKey struct {
	n    *big.Int
	e    *big.Int
	size int
}

// ParseServiceKey constructs a ServiceKey from hex-encoded modulus and
// public exponent.
func ParseServiceKey(modulusHex, exponentHex string) (*ServiceKey, error) {
	n, ok := new(big.Int).SetString(modulusHex, 16)
	if !ok || n.Sign() <= 0 {
		return nil, fmt.Errorf("crypto: invalid service key modulus")
	}
	e, ok := new(big.Int).SetString(exponentHex, 16)
	if !ok || e.Sign() <= 0 {
		return nil, fmt.Errorf("crypto: invalid service key exponent")
	}
	return &ServiceKey{
		n:    n,
		e:    e,
		size: (n.BitLen() + 7) / 8,
	}, nil
}

// Size returns the modulus size in bytes.
func (k *ServiceKey) Size() int {
	return k.size
}

// VerifyAndUnpad recovers a numeric value the server transformed with its
// private key. It applies the raw public-key operation, then strips the
// legacy PKCS#1 v1.5 block-type-01 padding. The vendor's original client
// stack sometimes omits the leading 0x00 of the padded block, so both
// [0x00 0x01 ...] and [0x01 ...] prefixes are accepted. The unpadded
// message is the value's ASCII decimal rendering.
func (k *ServiceKey) VerifyAndUnpad(encryptedHex string) (*big.Int, error) {
	c, ok := new(big.Int).SetString(encryptedHex, 16)
	if !ok || c.Sign() < 0 || c.Cmp(k.n) >= 0 {
		return nil, ErrVerificationFailed
	}

	m := new(big.Int).Exp(c, k.e, k.n)
	block := m.FillBytes(make([]byte, k.size))

	var offset int
	switch {
	case len(block) >= 2 && block[0] == 0x00 && block[1] == 0x01:
		offset = 2
	case block[0] == 0x01:
		offset = 1
	default:
		return nil, ErrVerificationFailed
	}

	sep := bytes.IndexByte(block[offset:], 0x00)
	if sep < 0 {
		return nil, ErrVerificationFailed
	}

	msg := block[offset+sep+1:]
	v, ok := new(big.Int).SetString(string(msg), 10)
	if !ok {
		return nil, ErrVerificationFailed
	}
	return v, nil
}

// PadAndEncrypt applies PKCS#1 v1.5 block-type-02 padding to msg and
// encrypts it with the service public key, returning the hex rendering
// the wire format expects.
func (k *ServiceKey) PadAndEncrypt(msg []byte) (string, error) {
	psLen := k.size - len(msg) - 3
	if psLen < 8 {
		return "", ErrMessageTooLong
	}

	block := make([]byte, k.size)
	block[0] = 0x00
	block[1] = 0x02
	ps := block[2 : 2+psLen]
	for i := range ps {
		// Padding bytes must be nonzero; resample until they are.
		var b [1]byte
		for {
			if _, err := rand.Read(b[:]); err != nil {
				return "", err
			}
			if b[0] != 0x00 {
				break
			}
		}
		ps[i] = b[0]
	}
	block[2+psLen] = 0x00
	copy(block[3+psLen:], msg)

	m := new(big.Int).SetBytes(block)
	c := new(big.Int).Exp(m, k.e, k.n)
	return hex.EncodeToString(c.FillBytes(make([]byte, k.size))), nil
}
