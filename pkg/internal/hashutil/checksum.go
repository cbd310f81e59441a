package hashutil

import (
	"encoding/hex"

	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/zeebo/blake3"
)

const prefix = "blake3:"

// Checksum returns the prefixed blake3 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return prefix + hex.EncodeToString(sum[:])
}

// FileChecksum calculates the checksum of a file read through fsys.
func FileChecksum(fsys types.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Checksum(data), nil
}
