package bridge

import (
	"context"
	"errors"
	"time"
)

var errUnexpectedShape = errors.New("unexpected result shape")

// CallResult carries an asynchronous host reply.
type CallResult struct {
	Value any
	Err   error
}

// DirectHost is the shape of an embedded native object that exposes one
// entry point per capability. A call may complete synchronously or hand
// back a channel that yields the result later; the bridge normalizes both
// into the always-asynchronous Invoke contract.
type DirectHost interface {
	Has(capability string) bool
	Call(capability string, args map[string]any) (any, error)
}

type directBridge struct {
	host DirectHost
	opts Options
}

// NewDirectBridge adapts a direct-call native object.
func NewDirectBridge(host DirectHost, opts Options) Bridge {
	return &directBridge{host: host, opts: opts.withDefaults()}
}

func (b *directBridge) Kind() HostKind { return HostDirect }

func (b *directBridge) Supports(capability Capability) bool {
	return capability.Valid() && b.host.Has(string(capability))
}

func (b *directBridge) Invoke(ctx context.Context, capability Capability, args map[string]any) (any, error) {
	if !b.Supports(capability) {
		return nil, ErrUnsupported
	}

	value, err := b.host.Call(string(capability), args)
	if err != nil {
		return nil, &HostError{Capability: capability, Message: err.Error()}
	}

	// Already-resolved value: wrap and return as-is.
	ch, ok := value.(<-chan CallResult)
	if !ok {
		if bidi, isBidi := value.(chan CallResult); isBidi {
			ch = bidi
		} else {
			return value, nil
		}
	}

	// Deferred value: await it, bounded by the capability deadline.
	timer := time.NewTimer(b.opts.timeoutFor(capability))
	defer timer.Stop()

	select {
	case res, open := <-ch:
		if !open {
			return nil, &HostError{Capability: capability, Message: "host closed result channel"}
		}
		if res.Err != nil {
			return nil, &HostError{Capability: capability, Message: res.Err.Error()}
		}
		return res.Value, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
