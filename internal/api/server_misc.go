package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
)

func registerMiscHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/api/v1/health", Summary: "Service health check", Tags: []string{"Misc"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type listTabsOutput struct {
		Body struct {
			Tabs []tabs.TabInfo `json:"tabs"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List tracked browser tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*listTabsOutput, error) {
			list, err := svc.ListTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listTabsOutput{}
			out.Body.Tabs = list
			return out, nil
		})

	type assistantOutput struct {
		Body struct {
			TabID string `json:"tab_id"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "open-assistant", Method: http.MethodPost, Path: "/api/v1/assistant/open", Summary: "Attach the element-picking assistant to the active tab", Tags: []string{"Assistant"}},
		func(ctx context.Context, input *struct{}) (*assistantOutput, error) {
			tabID, err := svc.OpenAssistant(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &assistantOutput{}
			out.Body.TabID = tabID
			return out, nil
		})
}
