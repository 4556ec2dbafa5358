// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// DigestSize is the size in bytes of a BLAKE3 digest.
const DigestSize = 32

// HashFile computes the BLAKE3 digest of the file at path. The file
// is streamed through the hash function in chunks (via io.Copy) to
// keep memory usage constant regardless of file size.
func HashFile(path string) ([DigestSize]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [DigestSize]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [DigestSize]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [DigestSize]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// HashBytes computes the BLAKE3 digest of data.
func HashBytes(data []byte) [DigestSize]byte {
	return blake3.Sum256(data)
}

// FormatDigest returns the hex-encoded string representation of a
// BLAKE3 digest. This is the canonical format used in resolved target
// specs, audit records, and log output.
func FormatDigest(digest [DigestSize]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded BLAKE3 digest string into a
// 32-byte array. Returns an error if the string is not a valid
// 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) ([DigestSize]byte, error) {
	var digest [DigestSize]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != DigestSize {
		return digest, fmt.Errorf("hash digest is %d bytes, want %d", len(decoded), DigestSize)
	}
	copy(digest[:], decoded)
	return digest, nil
}

// VerifyFile recomputes the digest of the file at path and compares
// it to want (hex-encoded). A mismatch returns an error naming both
// digests; the caller treats it as a refusal to launch.
func VerifyFile(path string, want string) error {
	wantDigest, err := ParseDigest(want)
	if err != nil {
		return err
	}
	got, err := HashFile(path)
	if err != nil {
		return err
	}
	if got != wantDigest {
		return fmt.Errorf("digest mismatch for %s: have %s, want %s",
			path, FormatDigest(got), want)
	}
	return nil
}
