// Package crypto implements the cipher session for the hotel protocol:
// the vendor's RC4-derived stream cipher, the service's legacy RSA-signed
// value scheme, and the Diffie-Hellman key exchange that binds them.
package crypto

import "errors"

// ErrInvalidKeySize is returned when a cipher key is empty or longer than
// the 256-byte S-box.
var ErrInvalidKeySize = errors.New("crypto: key must be 1 to 256 bytes")

// ArcFour is the vendor's RC4-derived stream cipher. The two traffic
// directions use distinct keystream extraction rules over an identical
// key schedule:
//
//   - outbound (client → server): standard RC4, single S-box lookup
//   - inbound (server → client): the vendor variant, double S-box lookup
//
// Keystream position advances monotonically with every byte transformed
// and can never be rewound; a cipher failure therefore terminates the
// session rather than resetting it. An ArcFour instance is owned by
// exactly one direction of one session and is not safe for concurrent use.
type ArcFour struct {
	s      [256]byte
	i, j   uint8
	double bool
}

// NewOutbound creates the client→server cipher (standard keystream).
func NewOutbound(key []byte) (*ArcFour, error) {
	return newArcFour(key, false)
}

// NewInbound creates the server→client cipher (double-lookup keystream).
func NewInbound(key []byte) (*ArcFour, error) {
	return newArcFour(key, true)
}

func newArcFour(key []byte, double bool) (*ArcFour, error) {
	if len(key) == 0 || len(key) > 256 {
		return nil, ErrInvalidKeySize
	}

	a := &ArcFour{double: double}
	for i := 0; i < 256; i++ {
		a.s[i] = byte(i)
	}

	// Standard RC4 key schedule, shared by both directions.
	var j uint8
	for i := 0; i < 256; i++ {
		j += a.s[i] + key[i%len(key)]
		a.s[i], a.s[j] = a.s[j], a.s[i]
	}
	return a, nil
}

// XORKeyStream combines src with the next keystream bytes and writes the
// result to dst, advancing the keystream position by len(src). dst and src
// may overlap entirely (in-place transform) but must not overlap partially.
// The transform is its own inverse at equal positions: an identically
// seeded instance applied to the output reproduces src exactly.
func (a *ArcFour) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("crypto: output smaller than input")
	}

	i, j := a.i, a.j
	for n, b := range src {
		i++
		j += a.s[i]
		a.s[i], a.s[j] = a.s[j], a.s[i]

		k := a.s[a.s[i]+a.s[j]]
		if a.double {
			k = a.s[k]
		}
		dst[n] = b ^ k
	}
	a.i, a.j = i, j
}

// Pair holds the two directional ciphers of one established session.
// The inbound cipher is nil when the server declines server→client
// encryption during the key exchange.
type Pair struct {
	Out *ArcFour
	In  *ArcFour
}

// EncryptOutbound transforms an outgoing [header][payload] region in place.
func (p *Pair) EncryptOutbound(region []byte) {
	p.Out.XORKeyStream(region, region)
}

// DecryptInbound transforms an incoming [header][payload] region in place.
// It is a no-op when the server declined inbound encryption.
func (p *Pair) DecryptInbound(region []byte) {
	if p.In != nil {
		p.In.XORKeyStream(region, region)
	}
}
