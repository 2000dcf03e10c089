package circuit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainCircuit prefixes circuit fingerprints. The version suffix allows
// the layout to change without colliding with old hashes.
const DomainCircuit = "qdelay/circuit/v1"

// Fingerprint returns a content hash of the canonical JSON form.
// Equal circuits have equal fingerprints.
//
// Format: hex(SHA256(domain + 0x00 + json))
func (c *Circuit) Fingerprint() (string, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainCircuit))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
