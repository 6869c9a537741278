package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/sidenote/internal/errors"
	"github.com/hpungsan/sidenote/internal/index"
	"github.com/hpungsan/sidenote/internal/note"
	"github.com/hpungsan/sidenote/internal/store"
	"github.com/hpungsan/sidenote/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(coord *store.Coordinator, idx *index.Store) *cli.App {
	app := &cli.App{
		Name:    "sidenote",
		Usage:   "File annotations that survive renames",
		Version: Version,
		Commands: []*cli.Command{
			setCmd(coord),
			getCmd(coord),
			rmCmd(coord),
			existsCmd(coord),
			lsCmd(idx),
			webCmd(idx),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// noteOutput is the CLI's JSON form of a note.
type noteOutput struct {
	ID         string `json:"id,omitempty"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	ModifiedAt int64  `json:"modified_at,omitempty"`
}

// setCmd creates the set command.
func setCmd(coord *store.Coordinator) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Attach a note to a file (body from --body or stdin)",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "Note body"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			path := c.Args().First()

			body := c.String("body")
			if body == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				body = text
			}

			n := &note.Note{
				Title: c.String("title"),
				Body:  body,
			}

			if err := coord.Save(c.Context, n, path); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"saved": !n.IsEmpty(), "path": path})
		},
	}
}

// getCmd creates the get command.
func getCmd(coord *store.Coordinator) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the note attached to a file",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			path := c.Args().First()

			n, err := coord.Load(c.Context, path)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(noteOutput{
				ID:         n.ID,
				Path:       path,
				Title:      n.Title,
				Body:       n.Body,
				CreatedAt:  n.CreatedAt,
				ModifiedAt: n.ModifiedAt,
			})
		},
	}
}

// rmCmd creates the rm command.
func rmCmd(coord *store.Coordinator) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove the note attached to a file",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			path := c.Args().First()

			if err := coord.Delete(c.Context, path); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"deleted": true, "path": path})
		},
	}
}

// existsCmd creates the exists command.
func existsCmd(coord *store.Coordinator) *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "Check whether a file has a note attached",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			path := c.Args().First()

			ok, err := coord.Exists(c.Context, path)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"exists": ok, "path": path})
		},
	}
}

// lsCmd creates the ls command.
func lsCmd(idx *index.Store) *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List annotated files",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: index.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			out, err := idx.List(c.Int("limit"), c.Int("offset"))
			if err != nil {
				return outputError(err)
			}

			notes := make([]noteOutput, 0, len(out.Records))
			for _, r := range out.Records {
				notes = append(notes, noteOutput{
					ID:         r.ID,
					Path:       r.Path,
					Title:      r.Title,
					Body:       r.Body,
					CreatedAt:  r.CreatedAt,
					ModifiedAt: r.ModifiedAt,
				})
			}

			return outputJSON(map[string]any{
				"notes":    notes,
				"total":    out.Total,
				"limit":    out.Limit,
				"offset":   out.Offset,
				"has_more": out.HasMore,
			})
		},
	}
}

// webCmd creates the web command.
func webCmd(idx *index.Store) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the read-only note viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7279, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(idx, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if nErr, ok := err.(*errors.NoteError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", nErr.Code, nErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
