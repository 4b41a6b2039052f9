package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

func TestDispatchRoutesToHandler(t *testing.T) {
	d := NewDispatcher()
	if err := d.Register(MsgLoadCustomFilterInfo, func(ctx context.Context, data json.RawMessage) (any, error) {
		return string(data), nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := d.Dispatch(context.Background(), Message{Type: MsgLoadCustomFilterInfo, Data: json.RawMessage(`{"url":"x"}`)})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got != `{"url":"x"}` {
		t.Fatalf("Dispatch() = %v; want raw payload echoed", got)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Dispatch(context.Background(), Message{Type: "NoSuchMessage"})
	var coded *types.CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("Dispatch() error type = %T; want *types.CodedError", err)
	}
	if coded.Code != types.CodeValidation {
		t.Fatalf("Dispatch() code = %q; want %q", coded.Code, types.CodeValidation)
	}
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	d := NewDispatcher()
	want := errors.New("boom")
	if err := d.Register(MsgRemoveAntiBannerFilter, func(ctx context.Context, data json.RawMessage) (any, error) {
		return nil, want
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := d.Dispatch(context.Background(), Message{Type: MsgRemoveAntiBannerFilter})
	if !errors.Is(err, want) {
		t.Fatalf("Dispatch() error = %v; want handler error unmodified", err)
	}
}

func TestRegisterDuplicateKind(t *testing.T) {
	d := NewDispatcher()
	fn := func(ctx context.Context, data json.RawMessage) (any, error) { return nil, nil }
	if err := d.Register(MsgSubscribeToCustomFilter, fn); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := d.Register(MsgSubscribeToCustomFilter, fn); err == nil {
		t.Fatalf("second Register() = nil; want duplicate error")
	}
}
