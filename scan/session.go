package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"sefy/bridge"

	"github.com/google/uuid"
)

// Session states
const (
	StateIdle                 = "IDLE"
	StateRequestingPermission = "REQUESTING_PERMISSION"
	StateScanning             = "SCANNING"
	StateDecoding             = "DECODING"
	StateDispatched           = "DISPATCHED"
)

// ErrScanInProgress rejects a second ScanQR while one is in flight. The
// bridge guarantees only one pending message-passing request per capability,
// so overlapping sessions are refused rather than queued.
var ErrScanInProgress = errors.New("scan: a scan is already in progress")

// Outcome is the product of one completed scan attempt.
type Outcome struct {
	Result *ScanResult   `json:"result"`
	Entry  *HistoryEntry `json:"entry"`
	Action *Action       `json:"action"`
}

// Session orchestrates one QR-scan attempt: permission check, bridge
// invocation, payload decode, history append, dispatch.
type Session struct {
	bridge  bridge.Bridge
	router  *Router
	history *History

	mu       sync.Mutex
	inFlight bool
	state    string
}

func NewSession(b bridge.Bridge, router *Router) *Session {
	return &Session{
		bridge:  b,
		router:  router,
		history: NewHistory(HistoryLimit),
		state:   StateIdle,
	}
}

// History exposes the session's scan log.
func (s *Session) History() *History { return s.history }

// State reports the current session state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// ScanQR runs one scan attempt for the user. An empty scanner result returns
// (nil, nil) and leaves no trace. When routing fails after a successful
// decode, the returned Outcome still carries the result and history entry
// alongside the error.
func (s *Session) ScanQR(ctx context.Context, userID uint) (*Outcome, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	outcome, err := s.run(ctx, userID)
	if err != nil {
		s.setState(StateIdle)
	}
	return outcome, err
}

func (s *Session) run(ctx context.Context, userID uint) (*Outcome, error) {
	// Entry guard: hosts that gate the camera must grant it before any
	// scan attempt is made.
	if err := s.ensureCameraPermission(ctx); err != nil {
		return nil, err
	}

	s.setState(StateScanning)
	value, err := s.bridge.Invoke(ctx, bridge.CapScan, nil)
	if err != nil {
		return nil, err
	}

	raw, _ := value.(string)
	if raw == "" {
		// Scanner dismissed or produced nothing: back to idle, silently.
		s.setState(StateIdle)
		return nil, nil
	}

	s.setState(StateDecoding)
	result, err := ParseScanResult(raw)
	if err != nil {
		return nil, err
	}

	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Payload:   *result,
		ScannedAt: time.Now(),
		Location:  s.lookupLocation(ctx),
	}
	s.history.Append(entry)

	action, err := s.router.Dispatch(ctx, userID, *result)
	if err != nil {
		return &Outcome{Result: result, Entry: &entry}, err
	}

	s.setState(StateDispatched)
	return &Outcome{Result: result, Entry: &entry, Action: action}, nil
}

// ensureCameraPermission asks the host for camera access when it gates it.
// Hosts without permission capabilities are treated as not requiring any.
func (s *Session) ensureCameraPermission(ctx context.Context) error {
	if !s.bridge.Supports(bridge.CapCheckPermission) {
		return nil
	}

	s.setState(StateRequestingPermission)
	args := map[string]any{"permission": "camera"}

	value, err := s.bridge.Invoke(ctx, bridge.CapCheckPermission, args)
	if err == nil && granted(value) {
		return nil
	}
	if err != nil && !errors.Is(err, bridge.ErrUnsupported) {
		return err
	}

	if !s.bridge.Supports(bridge.CapRequestPermission) {
		return bridge.ErrPermissionDenied
	}
	value, err = s.bridge.Invoke(ctx, bridge.CapRequestPermission, args)
	if err != nil {
		return err
	}
	if !granted(value) {
		return bridge.ErrPermissionDenied
	}
	return nil
}

// lookupLocation attaches a best-effort position to a scan. Absence or
// failure never fails the scan.
func (s *Session) lookupLocation(ctx context.Context) *Location {
	if !s.bridge.Supports(bridge.CapDeviceInfo) {
		return nil
	}
	info, err := bridge.InvokeObject(ctx, s.bridge, bridge.CapDeviceInfo, nil)
	if err != nil {
		return nil
	}
	lat, okLat := toFloat(info["lat"])
	lon, okLon := toFloat(info["lon"])
	if !okLat || !okLon {
		return nil
	}
	return &Location{Lat: lat, Lon: lon}
}

// granted interprets the permission shapes hosts answer with.
func granted(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "granted" || v == "true"
	case float64:
		return v == 1
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
