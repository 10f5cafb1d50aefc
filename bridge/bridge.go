package bridge

import (
	"context"
	"encoding/json"
	"time"
)

// HostKind identifies the runtime embedding the application. It is resolved
// once at startup by Detect, never re-probed per call.
type HostKind int

const (
	HostWeb     HostKind = iota // plain browser, no native object
	HostDirect                  // Android-style object with direct methods
	HostMessage                 // iOS-style set of message handlers
)

func (k HostKind) String() string {
	switch k {
	case HostDirect:
		return "direct"
	case HostMessage:
		return "message"
	default:
		return "web"
	}
}

// Bridge is the single asynchronous contract every host is adapted to.
type Bridge interface {
	Kind() HostKind
	Supports(capability Capability) bool
	Invoke(ctx context.Context, capability Capability, args map[string]any) (any, error)
}

// Options tunes host adaptation.
type Options struct {
	ScanTimeout    time.Duration // deadline for a scan answer from a message-passing host
	DefaultTimeout time.Duration // deadline for every other capability
	DownloadDir    string        // where the web fallback lands saved files
	AppVersion     string        // answer for CapAppVersion on the web fallback
}

func (o Options) withDefaults() Options {
	if o.ScanTimeout <= 0 {
		o.ScanTimeout = 30 * time.Second
	}
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = 10 * time.Second
	}
	if o.DownloadDir == "" {
		o.DownloadDir = "downloads"
	}
	return o
}

func (o Options) timeoutFor(capability Capability) time.Duration {
	if capability == CapScan {
		return o.ScanTimeout
	}
	return o.DefaultTimeout
}

// Detect picks the bridge implementation for the hosts present at startup.
// A direct-call object wins over message handlers; with neither, the web
// fallback serves.
func Detect(direct DirectHost, message MessageHost, opts Options) Bridge {
	if direct != nil {
		return NewDirectBridge(direct, opts)
	}
	if message != nil {
		return NewMessageBridge(message, opts)
	}
	return NewWebBridge(opts)
}

// decodeObject normalizes a capability result that must be a JSON object.
// Hosts hand objects back either as parsed maps or as raw JSON strings.
func decodeObject(capability Capability, value any) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, &DecodeError{Capability: capability, Raw: v, Err: err}
		}
		return out, nil
	case []byte:
		var out map[string]any
		if err := json.Unmarshal(v, &out); err != nil {
			return nil, &DecodeError{Capability: capability, Raw: string(v), Err: err}
		}
		return out, nil
	default:
		return nil, &DecodeError{Capability: capability, Err: errUnexpectedShape}
	}
}

// InvokeObject invokes a capability whose result is a structured object and
// decodes it, surfacing DecodeError on malformed host output.
func InvokeObject(ctx context.Context, b Bridge, capability Capability, args map[string]any) (map[string]any, error) {
	value, err := b.Invoke(ctx, capability, args)
	if err != nil {
		return nil, err
	}
	return decodeObject(capability, value)
}
