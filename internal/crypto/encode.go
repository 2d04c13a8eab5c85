package crypto

import "encoding/base64"

// Wire encoding for keys, envelopes and ciphertexts: standard base64
// alphabet with the padding stripped.
var b64 = base64.RawStdEncoding

// B64 encodes b for transport or storage.
func B64(b []byte) string { return b64.EncodeToString(b) }

// UnB64 decodes a transport string produced by B64.
func UnB64(s string) ([]byte, error) { return b64.DecodeString(s) }
