package transparency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// checksumLength is the number of hex characters kept from the digest.
// The checksum detects retroactive tampering of audit entries; it is a
// fingerprint, not a security-grade integrity check.
const checksumLength = 16

// auditChecksum fingerprints an audit action's parameters and result.
// encoding/json sorts map keys, so the digest is deterministic for equal
// inputs.
func auditChecksum(action string, parameters map[string]interface{}, result interface{}) string {
	payload := struct {
		Action     string                 `json:"action"`
		Parameters map[string]interface{} `json:"parameters"`
		Result     interface{}            `json:"result"`
	}{
		Action:     action,
		Parameters: parameters,
		Result:     result,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable values (channels, funcs) can land here, which
		// audit parameters never contain
		raw = []byte(action)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:checksumLength]
}

// VerifyEntryChecksum recomputes an entry's fingerprint and compares
func VerifyEntryChecksum(action string, parameters map[string]interface{}, result interface{}, checksum string) bool {
	return auditChecksum(action, parameters, result) == checksum
}
