// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

func sha256Sum(r io.Reader) (string, error) {
	hasher := sha256.New()
	_, err := io.Copy(hasher, r)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Sha256HashFile computes the sha256 sum of a file and returns the hex encoded result
func Sha256HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return sha256Sum(f)
}

// Sha256HashBytes computes the sha256 sum of the bytes c and returns the hex encoded result
func Sha256HashBytes(c []byte) (string, error) {
	return sha256Sum(bytes.NewReader(c))
}

// Sha256VerifyFile compares the sha256 sum of the file at path against the hex
// encoded expected sum, comparison is case insensitive
func Sha256VerifyFile(path string, expected string) (bool, error) {
	sum, err := Sha256HashFile(path)
	if err != nil {
		return false, fmt.Errorf("could not checksum %s: %w", path, err)
	}

	return strings.EqualFold(sum, expected), nil
}
