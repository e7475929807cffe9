package utils

// maskEdge is how many characters of each end of a key survive masking.
const maskEdge = 4

// MaskAPIKey redacts a stored key for status output, keeping just
// enough of each end to tell keys apart. Keys too short to keep both
// edges collapse to the placeholder entirely.
func MaskAPIKey(key string) string {
	if len(key) <= 2*maskEdge {
		return "****"
	}
	return key[:maskEdge] + "****" + key[len(key)-maskEdge:]
}
