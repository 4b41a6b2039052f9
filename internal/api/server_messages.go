package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/messaging"
)

func registerMessageHandlers(api huma.API, svc Service) {
	type messageOutput struct {
		Body struct {
			Result any `json:"result"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "dispatch-message", Method: http.MethodPost, Path: "/api/messages", Summary: "Dispatch a raw message envelope", Tags: []string{"Messages"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Type string          `json:"type" required:"true" doc:"Message kind, e.g. SubscribeToCustomFilter"`
				Data json.RawMessage `json:"data,omitempty" doc:"Kind-specific payload"`
			}
		}) (*messageOutput, error) {
			result, err := svc.DispatchMessage(ctx, messaging.Message{
				Type: messaging.MessageType(input.Body.Type),
				Data: input.Body.Data,
			})
			if err != nil {
				return nil, mapErr(err)
			}
			out := &messageOutput{}
			out.Body.Result = result
			return out, nil
		})

	type kindsOutput struct {
		Body struct {
			Kinds []messaging.MessageType `json:"kinds"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "list-message-kinds", Method: http.MethodGet, Path: "/api/messages/kinds", Summary: "List accepted message kinds", Tags: []string{"Messages"}},
		func(ctx context.Context, input *struct{}) (*kindsOutput, error) {
			kinds, err := svc.MessageKinds(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &kindsOutput{}
			out.Body.Kinds = kinds
			return out, nil
		})
}
