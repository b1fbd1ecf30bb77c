// Package rpc talks to the calculator, auction, auth and file services over
// gRPC. Messages are exchanged as JSON so no generated stubs are required;
// each typed client only declares the fields it consumes.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/pkg/errs"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultCallTimeout    = 30 * time.Second
)

// Caller invokes a unary remote method. Errors are already classified with an
// errs.Kind.
type Caller interface {
	Call(ctx context.Context, method string, req, resp any) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Options struct {
	ConnectTimeout time.Duration
	CallTimeout    time.Duration
	DialOptions    []grpc.DialOption
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	return o
}

// Conn is a Caller bound to one remote service.
type Conn struct {
	target      string
	cc          *grpc.ClientConn
	callTimeout time.Duration
}

var _ Caller = (*Conn)(nil)

// Dial connects to target and waits until the channel is READY or
// ConnectTimeout elapses.
func Dial(ctx context.Context, target string, opts Options) (*Conn, error) {
	opts = opts.withDefaults()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	}, opts.DialOptions...)

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnavailable, err, fmt.Sprintf("rpc client for %s", target))
	}

	readyCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	if err := waitReady(readyCtx, cc); err != nil {
		_ = cc.Close()
		return nil, errs.Wrap(errs.KindUnavailable, err, fmt.Sprintf("rpc channel %s is not ready", target))
	}

	return &Conn{target: target, cc: cc, callTimeout: opts.CallTimeout}, nil
}

func waitReady(ctx context.Context, cc *grpc.ClientConn) error {
	cc.Connect()
	for {
		state := cc.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("connection is shut down")
		}
		if !cc.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}

func (c *Conn) Target() string {
	return c.target
}

func (c *Conn) Call(ctx context.Context, method string, req, resp any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.cc.Invoke(callCtx, method, req, resp); err != nil {
		return mapError(method, err)
	}
	return nil
}

func (c *Conn) Close() error {
	return c.cc.Close()
}

// mapError is the only place where transport failures become domain kinds.
func mapError(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return errs.Wrap(errs.KindUnavailable, err, method)
	}

	msg := st.Message()
	if msg == "" {
		msg = method
	}

	return errs.Wrap(kindForCode(st.Code()), err, msg)
}

func kindForCode(code codes.Code) errs.Kind {
	switch code {
	case codes.NotFound:
		return errs.KindNotFound
	case codes.AlreadyExists, codes.Aborted:
		return errs.KindConflict
	case codes.FailedPrecondition:
		return errs.KindPreconditionFailed
	case codes.InvalidArgument, codes.OutOfRange:
		return errs.KindBadRequest
	default:
		return errs.KindUnavailable
	}
}
