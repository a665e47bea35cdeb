package mcp

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/mcp-timesheet/graph"
)

//go:embed tools/timesheetGetUser.md
var timesheetGetUserDesc string

//go:embed tools/timesheetCalendarView.md
var timesheetCalendarViewDesc string

//go:embed tools/timesheetCreateEvent.md
var timesheetCreateEventDesc string

//go:embed tools/timesheetGetList.md
var timesheetGetListDesc string

//go:embed tools/timesheetListItems.md
var timesheetListItemsDesc string

//go:embed tools/timesheetAddEntry.md
var timesheetAddEntryDesc string

//go:embed tools/timesheetUpdateEntry.md
var timesheetUpdateEntryDesc string

//go:embed tools/timesheetRemoveEntry.md
var timesheetRemoveEntryDesc string

//go:embed tools/timesheetShow.md
var timesheetShowDesc string

//go:embed tools/timesheetCopyPreviousWeek.md
var timesheetCopyPreviousWeekDesc string

//go:embed tools/timesheetSave.md
var timesheetSaveDesc string

//go:embed tools/timesheetDiscard.md
var timesheetDiscardDesc string

//go:embed tools/timesheetSubmit.md
var timesheetSubmitDesc string

func registerTools(base *protoserver.DefaultHandler, h *Handler) error {
	svc := h.service
	scopes := graph.DefaultScopes()

	// Graph tools
	if err := protoserver.RegisterTool[*graph.GetUserInput, *graph.User](base.Registry, "timesheetGetUser", timesheetGetUserDesc, func(ctx context.Context, in *graph.GetUserInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if err := h.prepare(ctx, &in.Account); err != nil {
			return buildErrorResult(err)
		}
		out, err := svc.users.Me(ctx, in, scopes, nil)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*CalendarViewInput, *graph.CalendarViewOutput](base.Registry, "timesheetCalendarView", timesheetCalendarViewDesc, func(ctx context.Context, in *CalendarViewInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if err := svc.calendarWindow(in); err != nil {
			return buildErrorResult(err)
		}
		if err := h.prepare(ctx, &in.Account); err != nil {
			return buildErrorResult(err)
		}
		out, err := svc.calendar.View(ctx, &in.CalendarViewInput, scopes, nil)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*graph.CreateEventInput, *graph.CalendarEvent](base.Registry, "timesheetCreateEvent", timesheetCreateEventDesc, func(ctx context.Context, in *graph.CreateEventInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.TimeZone == "" {
			in.TimeZone = svc.timeZone
		}
		if err := h.prepare(ctx, &in.Account); err != nil {
			return buildErrorResult(err)
		}
		out, err := svc.calendar.Create(ctx, in, scopes, nil)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*graph.GetListInput, *graph.List](base.Registry, "timesheetGetList", timesheetGetListDesc, func(ctx context.Context, in *graph.GetListInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if err := h.prepare(ctx, &in.Account); err != nil {
			return buildErrorResult(err)
		}
		out, err := svc.lists.Get(ctx, in, scopes, nil)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*graph.ListItemsInput, *graph.ListItemsOutput](base.Registry, "timesheetListItems", timesheetListItemsDesc, func(ctx context.Context, in *graph.ListItemsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if err := h.prepare(ctx, &in.Account); err != nil {
			return buildErrorResult(err)
		}
		out, err := svc.lists.Items(ctx, in, scopes, nil)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	// Sheet tools work on the in-memory draft and need no sign-in.
	if err := protoserver.RegisterTool[*AddEntryInput, *SheetView](base.Registry, "timesheetAddEntry", timesheetAddEntryDesc, func(ctx context.Context, in *AddEntryInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.AddEntry(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*UpdateEntryInput, *SheetView](base.Registry, "timesheetUpdateEntry", timesheetUpdateEntryDesc, func(ctx context.Context, in *UpdateEntryInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.UpdateEntry(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*RemoveEntryInput, *SheetView](base.Registry, "timesheetRemoveEntry", timesheetRemoveEntryDesc, func(ctx context.Context, in *RemoveEntryInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.RemoveEntry(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*SheetInput, *SheetView](base.Registry, "timesheetShow", timesheetShowDesc, func(ctx context.Context, in *SheetInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.Show(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*SheetInput, *SheetView](base.Registry, "timesheetCopyPreviousWeek", timesheetCopyPreviousWeekDesc, func(ctx context.Context, in *SheetInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.CopyPreviousWeek(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*SheetInput, *SaveOutput](base.Registry, "timesheetSave", timesheetSaveDesc, func(ctx context.Context, in *SheetInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.Save(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*SheetInput, *DiscardOutput](base.Registry, "timesheetDiscard", timesheetDiscardDesc, func(ctx context.Context, in *SheetInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := svc.DiscardDraft(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*SubmitInput, *SubmitOutput](base.Registry, "timesheetSubmit", timesheetSubmitDesc, func(ctx context.Context, in *SubmitInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if err := h.prepare(ctx, &in.Account); err != nil {
			return buildErrorResult(err)
		}
		out, err := svc.Submit(ctx, in)
		return buildResult(svc, out, err)
	}); err != nil {
		return err
	}

	return nil
}

// prepare validates the account and completes sign-in before a Graph call.
func (h *Handler) prepare(ctx context.Context, account *graph.Account) error {
	if err := h.service.account(account); err != nil {
		return err
	}
	return h.ensureSignedIn(ctx, *account)
}

func buildResult[T any](service *Service, out T, err error) (*schema.CallToolResult, *jsonrpc.Error) {
	if err != nil {
		return buildErrorResult(err)
	}
	return buildSuccessResult(service, out)
}

func buildErrorResult(err error) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, graph.Describe(err), nil)
}

func buildSuccessResult(service *Service, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		b, _ := json.Marshal(payload)
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: string(b)}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}

func newUUID() string { return uuid.New().String() }
