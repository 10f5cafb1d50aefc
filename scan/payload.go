package scan

import (
	"encoding/json"
	"errors"
	"strings"

	"sefy/bridge"
)

// Kind is the declared purpose of a scanned QR payload.
type Kind string

const (
	KindLecture     Kind = "lecture"
	KindCourse      Kind = "course"
	KindCertificate Kind = "certificate"
	KindAttendance  Kind = "attendance"
)

// Valid reports whether k is one of the accepted payload kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindLecture, KindCourse, KindCertificate, KindAttendance:
		return true
	}
	return false
}

// ScanResult is a decoded QR payload. A payload missing its kind or id is
// rejected outright, never partially accepted.
type ScanResult struct {
	Kind      Kind           `json:"type"`
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

var (
	errMissingKind = errors.New("payload missing type")
	errUnknownKind = errors.New("payload type not recognized")
	errMissingID   = errors.New("payload missing id")
)

// ParseScanResult decodes a raw scanner string into a ScanResult. Failures
// carry the bridge DecodeError taxonomy.
func ParseScanResult(raw string) (*ScanResult, error) {
	var result ScanResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &bridge.DecodeError{Capability: bridge.CapScan, Raw: raw, Err: err}
	}

	result.Kind = Kind(strings.TrimSpace(string(result.Kind)))
	result.ID = strings.TrimSpace(result.ID)

	if result.Kind == "" {
		return nil, &bridge.DecodeError{Capability: bridge.CapScan, Raw: raw, Err: errMissingKind}
	}
	if !result.Kind.Valid() {
		return nil, &bridge.DecodeError{Capability: bridge.CapScan, Raw: raw, Err: errUnknownKind}
	}
	if result.ID == "" {
		return nil, &bridge.DecodeError{Capability: bridge.CapScan, Raw: raw, Err: errMissingID}
	}
	return &result, nil
}
