package bridge

import "strings"

// Capability names one native operation exposed uniformly regardless of host.
type Capability string

const (
	CapScan              Capability = "scan"
	CapSaveFile          Capability = "saveFile"
	CapDownloadFile      Capability = "downloadFile"
	CapOpenFile          Capability = "openFile"
	CapToast             Capability = "toast"
	CapAlert             Capability = "alert"
	CapDeviceInfo        Capability = "deviceInfo"
	CapAppVersion        Capability = "appVersion"
	CapRequestPermission Capability = "requestPermission"
	CapCheckPermission   Capability = "checkPermission"
	CapNetworkStatus     Capability = "networkStatus"
	CapFcmToken          Capability = "fcmToken"
)

// Capabilities lists every capability the bridge knows about.
var Capabilities = []Capability{
	CapScan, CapSaveFile, CapDownloadFile, CapOpenFile,
	CapToast, CapAlert, CapDeviceInfo, CapAppVersion,
	CapRequestPermission, CapCheckPermission, CapNetworkStatus, CapFcmToken,
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	for _, known := range Capabilities {
		if c == known {
			return true
		}
	}
	return false
}

// HandlerName is the message-handler endpoint a message-passing host
// exposes for this capability. Same as the capability name.
func (c Capability) HandlerName() string {
	return string(c)
}

// CallbackName is the global callback a message-passing host invokes to
// deliver this capability's result, e.g. "onScanResult".
func (c Capability) CallbackName() string {
	name := string(c)
	return "on" + strings.ToUpper(name[:1]) + name[1:] + "Result"
}

// CapabilityForCallback maps a callback name back to its capability.
// The second return is false for unknown callbacks.
func CapabilityForCallback(callback string) (Capability, bool) {
	for _, c := range Capabilities {
		if c.CallbackName() == callback {
			return c, true
		}
	}
	return "", false
}
