package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/gameofchests/internal/api/response"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch <room>",
		Short: "Follow a room in real time",
		Long: `Connect to the room's event stream and print every change.

Events:
  - connected: stream established
  - room: the room changed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return streamRoom(ctx, args[0], jsonOutput, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamRoom(ctx context.Context, roomID string, jsonOutput bool, w io.Writer) error {
	u := strings.TrimSuffix(cfg.ServerURL, "/") + roomPath(roomID, "events")
	if cfg.Token != "" {
		u += "?token=" + url.QueryEscape(cfg.Token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Fprintf(w, "Watching room %s\n", roomID)
	}

	out := NewOutput("text", w)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				printEvent(out, w, currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(out *Output, w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		fmt.Fprintln(w, string(jsonData))
		return
	}

	fmt.Fprintf(w, "[%s] %s\n", now.Format("2006-01-02 15:04:05"), event)
	if event != "room" {
		return
	}

	var room response.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		fmt.Fprintln(w, data)
		return
	}
	out.Print(room)
}
