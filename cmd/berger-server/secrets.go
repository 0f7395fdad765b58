package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

type Secrets struct {
	APIToken string `toml:"api-token"`
}

// GenerateMissing fills absent secrets with fresh random values and reports
// whether anything changed, so the caller can persist the file.
func (s *Secrets) GenerateMissing() (bool, error) {
	if s.APIToken != "" {
		return false, nil
	}
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return false, fmt.Errorf("generate api token: %w", err)
	}
	s.APIToken = hex.EncodeToString(buf[:])
	return true, nil
}
