// Package identity generates and models the identifier bundle the tool
// rotates. Generation is pure: a fresh Set depends only on the system's
// secure random source, never on prior state.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Persisted key names. These are the exact strings the target application
// reads back, so they are part of the on-disk contract.
const (
	KeyDevDeviceID      = "telemetry.devDeviceId"
	KeyMacMachineID     = "telemetry.macMachineId"
	KeyMachineID        = "telemetry.machineId"
	KeySqmID            = "telemetry.sqmId"
	KeyServiceMachineID = "storage.serviceMachineId"
)

// Set is one complete identity bundle.
type Set struct {
	// DevDeviceID is a UUID v4 in canonical lowercase text form.
	DevDeviceID string
	// MachineID is 64 lowercase hex characters (a SHA-256 digest).
	MachineID string
	// MacMachineID is 128 lowercase hex characters (a SHA-512 digest).
	MacMachineID string
	// SqmID is an uppercase UUID wrapped in braces.
	SqmID string
	// ServiceMachineID always equals DevDeviceID.
	ServiceMachineID string
}

// Pair is one persisted key/value entry.
type Pair struct {
	Key   string
	Value string
}

// New generates a fresh Set from crypto/rand.
func New() (Set, error) {
	devDeviceID := uuid.NewString()

	machineID, err := randomDigest(32, func(b []byte) []byte {
		sum := sha256.Sum256(b)
		return sum[:]
	})
	if err != nil {
		return Set{}, err
	}

	macMachineID, err := randomDigest(64, func(b []byte) []byte {
		sum := sha512.Sum512(b)
		return sum[:]
	})
	if err != nil {
		return Set{}, err
	}

	return Set{
		DevDeviceID:      devDeviceID,
		MachineID:        machineID,
		MacMachineID:     macMachineID,
		SqmID:            "{" + strings.ToUpper(uuid.NewString()) + "}",
		ServiceMachineID: devDeviceID,
	}, nil
}

// randomDigest hashes n crypto-random bytes and returns the hex digest.
func randomDigest(n int, hash func([]byte) []byte) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(hash(buf)), nil
}

// Pairs returns the persisted entries in a fixed order. Empty values are
// included; callers that must skip them (restore) filter explicitly.
func (s Set) Pairs() []Pair {
	return []Pair{
		{KeyDevDeviceID, s.DevDeviceID},
		{KeyMacMachineID, s.MacMachineID},
		{KeyMachineID, s.MachineID},
		{KeySqmID, s.SqmID},
		{KeyServiceMachineID, s.ServiceMachineID},
	}
}

// Keys returns the persisted key names in the same order as Pairs.
func Keys() []string {
	return []string{KeyDevDeviceID, KeyMacMachineID, KeyMachineID, KeySqmID, KeyServiceMachineID}
}

// FromMap builds a Set from persisted key/value entries, e.g. a parsed
// backup of storage.json. ServiceMachineID falls back to DevDeviceID when
// the entry is absent, matching what the application itself does.
func FromMap(m map[string]string) Set {
	s := Set{
		DevDeviceID:      m[KeyDevDeviceID],
		MachineID:        m[KeyMachineID],
		MacMachineID:     m[KeyMacMachineID],
		SqmID:            m[KeySqmID],
		ServiceMachineID: m[KeyServiceMachineID],
	}
	if s.ServiceMachineID == "" {
		s.ServiceMachineID = s.DevDeviceID
	}
	return s
}
