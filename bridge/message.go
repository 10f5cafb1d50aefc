package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageHost is the shape of a WKWebView-style shell: named message-handler
// endpoints that accept a JSON request and answer later through the
// per-capability callback.
type MessageHost interface {
	HasHandler(name string) bool
	PostMessage(name string, message []byte) error
}

// hostRequest is the wire format posted to a message handler.
type hostRequest struct {
	RequestID string         `json:"requestId"`
	Callback  string         `json:"callback"`
	Args      map[string]any `json:"args,omitempty"`
}

// hostResponse is the wire format a host delivers back through Deliver.
type hostResponse struct {
	RequestID string          `json:"requestId"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// MessageBridge adapts a message-passing host. The embedding shell answers a
// posted request by invoking Deliver with the callback name from the request
// and a hostResponse payload.
type MessageBridge struct {
	host     MessageHost
	opts     Options
	registry *PendingRequestRegistry
}

func NewMessageBridge(host MessageHost, opts Options) *MessageBridge {
	return &MessageBridge{
		host:     host,
		opts:     opts.withDefaults(),
		registry: NewPendingRequestRegistry(),
	}
}

func (b *MessageBridge) Kind() HostKind { return HostMessage }

func (b *MessageBridge) Supports(capability Capability) bool {
	return capability.Valid() && b.host.HasHandler(capability.HandlerName())
}

func (b *MessageBridge) Invoke(ctx context.Context, capability Capability, args map[string]any) (any, error) {
	if !b.Supports(capability) {
		return nil, ErrUnsupported
	}

	requestID := uuid.NewString()
	ch, err := b.registry.Insert(capability, requestID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(hostRequest{
		RequestID: requestID,
		Callback:  capability.CallbackName(),
		Args:      args,
	})
	if err != nil {
		b.registry.Evict(capability, requestID)
		return nil, err
	}

	if err := b.host.PostMessage(capability.HandlerName(), payload); err != nil {
		b.registry.Evict(capability, requestID)
		return nil, &HostError{Capability: capability, Message: err.Error()}
	}

	timer := time.NewTimer(b.opts.timeoutFor(capability))
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Value, nil
	case <-timer.C:
		// Clear the registration so a late callback lands on nothing.
		b.registry.Evict(capability, requestID)
		return nil, ErrTimeout
	case <-ctx.Done():
		b.registry.Evict(capability, requestID)
		return nil, ctx.Err()
	}
}

// Deliver routes a host callback to its pending request. Unknown callbacks
// and callbacks arriving after timeout are safe no-ops returning false.
func (b *MessageBridge) Deliver(callback string, payload []byte) bool {
	capability, ok := CapabilityForCallback(callback)
	if !ok {
		return false
	}

	var resp hostResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		decodeErr := &DecodeError{Capability: capability, Raw: string(payload), Err: err}
		return b.registry.ResolveLive(capability, CallResult{Err: decodeErr})
	}

	res := CallResult{}
	if resp.Error != "" {
		res.Err = &HostError{Capability: capability, Message: resp.Error}
	} else if len(resp.Result) > 0 {
		var value any
		if err := json.Unmarshal(resp.Result, &value); err != nil {
			res.Err = &DecodeError{Capability: capability, Raw: string(resp.Result), Err: err}
		} else {
			res.Value = value
		}
	}

	if resp.RequestID != "" {
		return b.registry.Resolve(capability, resp.RequestID, res)
	}
	return b.registry.ResolveLive(capability, res)
}
