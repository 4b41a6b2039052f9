package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/filters"
)

func registerFilterHandlers(api huma.API, svc Service) {
	type filterOutput struct {
		Body filters.Filter
	}

	type listFiltersOutput struct {
		Body struct {
			Filters []filters.Filter `json:"filters"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "list-filters", Method: http.MethodGet, Path: "/api/v1/filters", Summary: "List all custom filters", Tags: []string{"Filters"}},
		func(ctx context.Context, input *struct{}) (*listFiltersOutput, error) {
			list, err := svc.ListFilters(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listFiltersOutput{}
			out.Body.Filters = list
			return out, nil
		})

	type filterIDInput struct {
		FilterID int `path:"filter_id"`
	}

	huma.Register(api, huma.Operation{OperationID: "get-filter", Method: http.MethodGet, Path: "/api/v1/filters/{filter_id}", Summary: "Get single filter by ID", Tags: []string{"Filters"}},
		func(ctx context.Context, input *filterIDInput) (*filterOutput, error) {
			f, err := svc.GetFilter(ctx, input.FilterID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &filterOutput{}
			out.Body = f
			return out, nil
		})

	type rulesOutput struct {
		Body struct {
			FilterID int    `json:"filter_id"`
			Rules    string `json:"rules"`
		}
	}

	huma.Register(api, huma.Operation{OperationID: "get-filter-rules", Method: http.MethodGet, Path: "/api/v1/filters/{filter_id}/rules", Summary: "Get the raw rule text of a filter", Tags: []string{"Filters"}},
		func(ctx context.Context, input *filterIDInput) (*rulesOutput, error) {
			rules, err := svc.GetFilterRules(ctx, input.FilterID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &rulesOutput{}
			out.Body.FilterID = input.FilterID
			out.Body.Rules = rules
			return out, nil
		})

	type filterInfoOutput struct {
		Body filters.FilterInfo
	}

	huma.Register(api, huma.Operation{OperationID: "load-filter-info", Method: http.MethodPost, Path: "/api/v1/filters/info", Summary: "Download and describe a filter list without subscribing", Tags: []string{"Filters"}},
		func(ctx context.Context, input *struct {
			Body struct {
				URL   string `json:"url" required:"true" doc:"Filter list URL"`
				Title string `json:"title,omitempty" doc:"Optional display title override"`
			}
		}) (*filterInfoOutput, error) {
			info, err := svc.LoadCustomFilterInfo(ctx, input.Body.URL, input.Body.Title)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &filterInfoOutput{}
			out.Body = info
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "subscribe-filter", Method: http.MethodPost, Path: "/api/v1/filters", Summary: "Subscribe to a custom filter list", Tags: []string{"Filters"}},
		func(ctx context.Context, input *struct {
			Body struct {
				CustomURL string `json:"customUrl" required:"true" doc:"Filter list URL"`
				Name      string `json:"name,omitempty" doc:"Optional display name"`
				Trusted   bool   `json:"trusted,omitempty" doc:"Whether the list may use trusted-only rule types"`
			}
		}) (*filterOutput, error) {
			f, err := svc.SubscribeToCustomFilter(ctx, filters.CustomFilterSpec{
				CustomURL: input.Body.CustomURL,
				Name:      input.Body.Name,
				Trusted:   input.Body.Trusted,
			})
			if err != nil {
				return nil, mapErr(err)
			}
			out := &filterOutput{}
			out.Body = f
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "remove-filter", Method: http.MethodDelete, Path: "/api/v1/filters/{filter_id}", Summary: "Remove a filter by ID", Tags: []string{"Filters"}},
		func(ctx context.Context, input *filterIDInput) (*struct{}, error) {
			if err := svc.RemoveFilter(ctx, input.FilterID); err != nil {
				return nil, mapErr(err)
			}
			return nil, nil
		})
}
