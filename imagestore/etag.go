package imagestore

import (
	"fmt"

	"github.com/minio/blake2b-simd"
)

// ETag returns a strong HTTP entity tag for raw.
func ETag(raw []byte) string {
	h, err := blake2b.New(&blake2b.Config{Size: 16})
	if err != nil {
		return ""
	}
	if _, err := h.Write(raw); err != nil {
		return ""
	}

	return fmt.Sprintf(`"%x"`, h.Sum(nil))
}
