package bridge

import (
	"context"
	"encoding/base64"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

// webBridge is the fallback for plain-browser hosts. Capabilities with a
// reasonable browser equivalent degrade to it; the rest report ErrUnsupported.
type webBridge struct {
	opts Options
}

// NewWebBridge builds the web fallback.
func NewWebBridge(opts Options) Bridge {
	return &webBridge{opts: opts.withDefaults()}
}

func (b *webBridge) Kind() HostKind { return HostWeb }

func (b *webBridge) Supports(capability Capability) bool {
	switch capability {
	case CapScan, CapOpenFile, CapFcmToken:
		return false
	default:
		return capability.Valid()
	}
}

func (b *webBridge) Invoke(ctx context.Context, capability Capability, args map[string]any) (any, error) {
	switch capability {
	case CapScan, CapOpenFile, CapFcmToken:
		// No camera access path, no file opener, no push registration on plain web.
		return nil, ErrUnsupported

	case CapSaveFile, CapDownloadFile:
		return b.saveFile(capability, args)

	case CapToast, CapAlert:
		log.Printf("[BRIDGE] %s: %v", capability, args["message"])
		return true, nil

	case CapRequestPermission, CapCheckPermission:
		// The browser prompts on use; treat as granted here.
		return "granted", nil

	case CapDeviceInfo:
		hostname, _ := os.Hostname()
		return map[string]any{
			"platform": "web",
			"os":       runtime.GOOS,
			"arch":     runtime.GOARCH,
			"hostname": hostname,
		}, nil

	case CapAppVersion:
		return b.opts.AppVersion, nil

	case CapNetworkStatus:
		return map[string]any{"online": true}, nil

	default:
		return nil, ErrUnsupported
	}
}

// saveFile is the Blob-and-anchor-click equivalent: the payload lands as a
// file in the configured download directory.
func (b *webBridge) saveFile(capability Capability, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	if name == "" {
		name = "download.bin"
	}

	var data []byte
	switch v := args["data"].(type) {
	case string:
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			// Not base64: save the raw string.
			decoded = []byte(v)
		}
		data = decoded
	case []byte:
		data = v
	default:
		return nil, &DecodeError{Capability: capability, Err: errUnexpectedShape}
	}

	if err := os.MkdirAll(b.opts.DownloadDir, 0o755); err != nil {
		return nil, &HostError{Capability: capability, Message: err.Error()}
	}
	path := filepath.Join(b.opts.DownloadDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &HostError{Capability: capability, Message: err.Error()}
	}
	return path, nil
}
