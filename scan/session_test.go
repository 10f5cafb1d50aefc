package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"sefy/bridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHostBridge scripts per-capability answers for session tests.
type fakeHostBridge struct {
	mu      sync.Mutex
	results map[bridge.Capability]any
	errs    map[bridge.Capability]error
	calls   map[bridge.Capability]int
	block   chan struct{} // when set, scan invocations wait on it
}

func newFakeHostBridge() *fakeHostBridge {
	return &fakeHostBridge{
		results: make(map[bridge.Capability]any),
		errs:    make(map[bridge.Capability]error),
		calls:   make(map[bridge.Capability]int),
	}
}

func (b *fakeHostBridge) Kind() bridge.HostKind { return bridge.HostDirect }

func (b *fakeHostBridge) Supports(capability bridge.Capability) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, hasResult := b.results[capability]
	_, hasErr := b.errs[capability]
	return hasResult || hasErr
}

func (b *fakeHostBridge) Invoke(ctx context.Context, capability bridge.Capability, args map[string]any) (any, error) {
	b.mu.Lock()
	b.calls[capability]++
	blocked := capability == bridge.CapScan && b.block != nil
	block := b.block
	value := b.results[capability]
	err := b.errs[capability]
	b.mu.Unlock()

	if blocked {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *fakeHostBridge) callCount(capability bridge.Capability) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[capability]
}

type fakeAttendanceRecorder struct {
	mu    sync.Mutex
	calls int
	last  ScanResult
	err   error
}

func (r *fakeAttendanceRecorder) RecordAttendance(ctx context.Context, userID uint, result ScanResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = result
	return r.err
}

func TestScanQRDispatchesLecture(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"lecture","id":"42"}`
	session := NewSession(host, NewRouter(nil))

	outcome, err := session.ScanQR(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, "/lecture/42", outcome.Action.Route)
	assert.Equal(t, KindLecture, outcome.Result.Kind)
	assert.Equal(t, StateDispatched, session.State())

	entries := session.History().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "42", entries[0].Payload.ID)
	assert.NotEmpty(t, entries[0].ID)
}

func TestScanQREmptyResultIsSilent(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = ""
	session := NewSession(host, NewRouter(nil))

	outcome, err := session.ScanQR(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, outcome)
	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, 0, session.History().Len())
}

func TestScanQRMalformedPayloadLeavesNoTrace(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"id":"42"}`
	session := NewSession(host, NewRouter(nil))

	outcome, err := session.ScanQR(context.Background(), 1)
	assert.Nil(t, outcome)

	var decodeErr *bridge.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, 0, session.History().Len())
}

func TestScanQRPermissionDeniedSkipsScanner(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"lecture","id":"42"}`
	host.results[bridge.CapCheckPermission] = "denied"
	host.results[bridge.CapRequestPermission] = "denied"
	session := NewSession(host, NewRouter(nil))

	outcome, err := session.ScanQR(context.Background(), 1)
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, bridge.ErrPermissionDenied)
	assert.Equal(t, 0, host.callCount(bridge.CapScan), "scanner must not open without camera permission")
	assert.Equal(t, StateIdle, session.State())
}

func TestScanQRPermissionGrantedOnRequest(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"course","id":"9"}`
	host.results[bridge.CapCheckPermission] = "denied"
	host.results[bridge.CapRequestPermission] = "granted"
	session := NewSession(host, NewRouter(nil))

	outcome, err := session.ScanQR(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/course/9", outcome.Action.Route)
}

func TestScanQRAttachesHostLocation(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"lecture","id":"3"}`
	host.results[bridge.CapDeviceInfo] = map[string]any{"lat": 52.52, "lon": 13.405}
	session := NewSession(host, NewRouter(nil))

	_, err := session.ScanQR(context.Background(), 1)
	require.NoError(t, err)

	entries := session.History().Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Location)
	assert.Equal(t, 52.52, entries[0].Location.Lat)
	assert.Equal(t, 13.405, entries[0].Location.Lon)
}

func TestScanQRLocationFailureDoesNotFailScan(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"lecture","id":"3"}`
	host.errs[bridge.CapDeviceInfo] = errors.New("gps off")
	session := NewSession(host, NewRouter(nil))

	outcome, err := session.ScanQR(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, session.History().Entries(), 1)
	assert.Nil(t, session.History().Entries()[0].Location)
	assert.NotNil(t, outcome.Action)
}

func TestScanQRAttendanceRecordedExactlyOnce(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"attendance","id":"evt-1"}`
	recorder := &fakeAttendanceRecorder{}
	session := NewSession(host, NewRouter(recorder))

	outcome, err := session.ScanQR(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "/attendance", outcome.Action.Route)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "evt-1", recorder.last.ID)
}

func TestScanQRAttendanceFailureKeepsHistory(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"attendance","id":"evt-1"}`
	recorder := &fakeAttendanceRecorder{err: errors.New("backend unreachable")}
	session := NewSession(host, NewRouter(recorder))

	outcome, err := session.ScanQR(context.Background(), 7)
	require.Error(t, err)
	require.NotNil(t, outcome, "decoded result survives a dispatch failure")
	assert.Nil(t, outcome.Action)
	assert.Equal(t, "evt-1", outcome.Result.ID)
	assert.Equal(t, 1, session.History().Len())
	assert.Equal(t, 1, recorder.calls)
}

func TestScanQRRejectsConcurrentSession(t *testing.T) {
	host := newFakeHostBridge()
	host.results[bridge.CapScan] = `{"type":"lecture","id":"1"}`
	host.block = make(chan struct{})
	session := NewSession(host, NewRouter(nil))

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := session.ScanQR(context.Background(), 1)
		done <- err
	}()
	<-started
	for host.callCount(bridge.CapScan) == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := session.ScanQR(context.Background(), 1)
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(host.block)
	assert.NoError(t, <-done)
}

func TestHistoryEvictsOldestPastCap(t *testing.T) {
	host := newFakeHostBridge()
	session := NewSession(host, NewRouter(nil))

	for i := 1; i <= HistoryLimit+1; i++ {
		host.results[bridge.CapScan] = fmt.Sprintf(`{"type":"lecture","id":"%d"}`, i)
		_, err := session.ScanQR(context.Background(), 1)
		require.NoError(t, err)
	}

	entries := session.History().Entries()
	require.Len(t, entries, HistoryLimit)
	assert.Equal(t, "51", entries[0].Payload.ID, "newest entry sits at the front")
	assert.Equal(t, "2", entries[HistoryLimit-1].Payload.ID, "the very first scan is evicted")
}

func TestRouterRejectsUnknownKind(t *testing.T) {
	router := NewRouter(nil)
	_, err := router.Dispatch(context.Background(), 1, ScanResult{Kind: Kind("coupon"), ID: "x"})
	assert.ErrorIs(t, err, ErrUnrecognizedKind)
}

func TestRouterCertificateRoute(t *testing.T) {
	router := NewRouter(nil)
	action, err := router.Dispatch(context.Background(), 1, ScanResult{Kind: KindCertificate, ID: "cert-12"})
	require.NoError(t, err)
	assert.Equal(t, "/certificate/cert-12", action.Route)
}
