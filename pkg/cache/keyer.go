package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
)

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey generates a key for the validation summary of a document.
	DocumentKey(docHash string) string

	// RenderKey generates a key for an artifact rendered from a document.
	RenderKey(docHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts holds the options that change a rendered artifact.
type RenderKeyOpts struct {
	Format     string  `json:"format"`
	Detailed   bool    `json:"detailed,omitempty"`
	Positioned bool    `json:"positioned,omitempty"`
	Scale      float64 `json:"scale,omitempty"` // view scale
	Root       string  `json:"root,omitempty"`  // view current root
	Stylesheet string  `json:"stylesheet,omitempty"` // hash of the stylesheet file
}

// DefaultKeyer produces keys of the form "type:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey implements [Keyer].
func (DefaultKeyer) DocumentKey(docHash string) string {
	return hashKey("document", docHash)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render", docHash, opts)
}

// hashKey returns "typ:" followed by the hash of the JSON encoding of
// parts. The type prefix is what [Instrument] reports to the cache hooks.
func hashKey(typ string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return typ + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of parts. Each part is length-prefixed, so
// a document and a config hash cannot collide by shifting bytes between
// them.
func Hash(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
