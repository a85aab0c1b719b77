package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"notefeed/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the notes operations as tools
func NewServer(svc *notes.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Notefeed",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("post_note",
			mcp.WithDescription("Post a new note. Content is limited to 280 characters; author name must be 2-50 characters."),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("The note text (1-280 characters)"),
			),
			mcp.WithString("author",
				mcp.Required(),
				mcp.Description("Author name (2-50 characters)"),
			),
		),
		handlePostNote(svc),
	)

	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List notes, newest first, with pagination. Optionally filter by author."),
			mcp.WithNumber("page",
				mcp.Description("Page number, starting at 1 (default: 1)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Notes per page (default: 10, max: 100)"),
			),
			mcp.WithString("author",
				mcp.Description("Optional: only notes by this author"),
			),
		),
		handleListNotes(svc),
	)

	s.AddTool(
		mcp.NewTool("top_liked",
			mcp.WithDescription("Get the most liked notes, ties broken by recency."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 5, max: 100)"),
			),
		),
		handleTopLiked(svc),
	)

	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetNote(svc),
	)

	s.AddTool(
		mcp.NewTool("like_note",
			mcp.WithDescription("Add one like to a note."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleLikeNote(svc),
	)

	s.AddTool(
		mcp.NewTool("unlike_note",
			mcp.WithDescription("Remove one like from a note. The like count never goes below zero."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleUnlikeNote(svc),
	)

	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note permanently. Returns the note as it existed before deletion."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleDeleteNote(svc),
	)

	return s
}

// NoteResult represents a note in tool responses
type NoteResult struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListResult bundles one page of notes with its pagination metadata
type ListResult struct {
	Notes      []NoteResult    `json:"notes"`
	Pagination *notes.PageInfo `json:"pagination"`
}

func handlePostNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}
		author, err := req.RequireString("author")
		if err != nil {
			return mcp.NewToolResultError("author is required"), nil
		}

		note, err := svc.Create(ctx, notes.CreateNoteInput{Content: content, Author: author})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to post note: %v", err)), nil
		}

		return noteResult(note), nil
	}
}

func handleListNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, pageInfo, err := svc.List(ctx, notes.ListQuery{
			Page:   req.GetInt("page", 0),
			Limit:  req.GetInt("limit", 0),
			Author: req.GetString("author", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}

		result := ListResult{
			Notes:      notesToResults(items),
			Pagination: pageInfo,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleTopLiked(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.TopLiked(ctx, req.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get top liked notes: %v", err)), nil
		}

		data, _ := json.MarshalIndent(notesToResults(items), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.GetByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		return noteResult(note), nil
	}
}

func handleLikeNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Like(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to like note: %v", err)), nil
		}

		return noteResult(note), nil
	}
}

func handleUnlikeNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Unlike(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to unlike note: %v", err)), nil
		}

		return noteResult(note), nil
	}
}

func handleDeleteNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Delete(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}

		return noteResult(note), nil
	}
}

// Helper functions

func toResult(n *notes.Note) NoteResult {
	return NoteResult{
		ID:        n.ID.Hex(),
		Content:   n.Content,
		Author:    n.Author,
		Likes:     n.Likes,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func notesToResults(noteList []*notes.Note) []NoteResult {
	results := make([]NoteResult, len(noteList))
	for i, n := range noteList {
		results[i] = toResult(n)
	}
	return results
}

func noteResult(n *notes.Note) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(toResult(n), "", "  ")
	return mcp.NewToolResultText(string(data))
}
