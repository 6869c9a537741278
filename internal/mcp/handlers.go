package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/index"
	"github.com/hpungsan/sidenote/internal/note"
	"github.com/hpungsan/sidenote/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	coord *store.Coordinator
	idx   *index.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(coord *store.Coordinator, idx *index.Store) *Handlers {
	return &Handlers{coord: coord, idx: idx}
}

// Request types for each tool

// SaveRequest represents the arguments for note_save.
type SaveRequest struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// GetRequest represents the arguments for note_get.
type GetRequest struct {
	Path string `json:"path"`
}

// ExistsRequest represents the arguments for note_exists.
type ExistsRequest struct {
	Path string `json:"path"`
}

// DeleteRequest represents the arguments for note_delete.
type DeleteRequest struct {
	Path string `json:"path"`
}

// ListRequest represents the arguments for note_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Response types

// NoteResponse is the wire form of a note.
type NoteResponse struct {
	ID         string `json:"id,omitempty"`
	Path       string `json:"path,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	ModifiedAt int64  `json:"modified_at,omitempty"`
}

// SaveResponse is the result of note_save.
type SaveResponse struct {
	Saved bool   `json:"saved"`
	Path  string `json:"path"`
}

// ExistsResponse is the result of note_exists.
type ExistsResponse struct {
	Exists bool   `json:"exists"`
	Path   string `json:"path"`
}

// DeleteResponse is the result of note_delete.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Path    string `json:"path"`
}

// ListResponse is the result of note_list.
type ListResponse struct {
	Notes   []NoteResponse `json:"notes"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	HasMore bool           `json:"has_more"`
}

// Tool definitions

var saveToolDef = mcp.NewTool("note_save",
	mcp.WithDescription("Attach a note to a file or directory. Saving a note with empty title and body deletes any existing note."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file or directory")),
	mcp.WithString("title", mcp.Description("Note title")),
	mcp.WithString("body", mcp.Description("Note body")),
)

var getToolDef = mcp.NewTool("note_get",
	mcp.WithDescription("Read the note attached to a file or directory. Follows the file across renames and moves on the same volume."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file or directory")),
)

var existsToolDef = mcp.NewTool("note_exists",
	mcp.WithDescription("Check whether a note is attached to a file or directory."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file or directory")),
)

var deleteToolDef = mcp.NewTool("note_delete",
	mcp.WithDescription("Remove the note attached to a file or directory. Removing a note that does not exist succeeds."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file or directory")),
)

var listToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List annotated files, most recently modified first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

// Handler implementations

// HandleSave handles the note_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	n := &note.Note{Title: input.Title, Body: input.Body}
	if err := h.coord.Save(ctx, n, input.Path); err != nil {
		return errorResult(err), nil
	}

	return successResult(SaveResponse{Saved: true, Path: input.Path})
}

// HandleGet handles the note_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	n, err := h.coord.Load(ctx, input.Path)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(NoteResponse{
		ID:         n.ID,
		Path:       input.Path,
		Title:      n.Title,
		Body:       n.Body,
		CreatedAt:  n.CreatedAt,
		ModifiedAt: n.ModifiedAt,
	})
}

// HandleExists handles the note_exists tool call.
func (h *Handlers) HandleExists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExistsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	ok, err := h.coord.Exists(ctx, input.Path)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ExistsResponse{Exists: ok, Path: input.Path})
}

// HandleDelete handles the note_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	if err := h.coord.Delete(ctx, input.Path); err != nil {
		return errorResult(err), nil
	}

	return successResult(DeleteResponse{Deleted: true, Path: input.Path})
}

// HandleList handles the note_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := h.idx.List(input.Limit, input.Offset)
	if err != nil {
		return errorResult(err), nil
	}

	notes := make([]NoteResponse, 0, len(out.Records))
	for _, r := range out.Records {
		notes = append(notes, NoteResponse{
			ID:         r.ID,
			Path:       r.Path,
			Title:      r.Title,
			Body:       r.Body,
			CreatedAt:  r.CreatedAt,
			ModifiedAt: r.ModifiedAt,
		})
	}

	return successResult(ListResponse{
		Notes:   notes,
		Total:   out.Total,
		Limit:   out.Limit,
		Offset:  out.Offset,
		HasMore: out.HasMore,
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if nErr, ok := err.(*errors.NoteError); ok {
		errorObj := map[string]any{
			"code":    nErr.Code,
			"message": nErr.Message,
			"status":  nErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like SQL errors
		if nErr.Code != errors.ErrInternal && nErr.Details != nil {
			errorObj["details"] = nErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
