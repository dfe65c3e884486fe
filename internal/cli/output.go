package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/gameofchests/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Identity:
		fmt.Fprintf(o.w, "Identity: %s (%s)\n", v.ID, v.Short)
	case response.CredentialsResponse:
		fmt.Fprintf(o.w, "Identity: %s (%s)\n", v.Identity.ID, v.Identity.Short)
		fmt.Fprintf(o.w, "Expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	case response.Room:
		o.printRoom(v)
	case response.JoinResponse:
		o.printRoom(v.Room)
	case response.BotResponse:
		fmt.Fprintf(o.w, "Bot: %s\n", v.Bot.Short)
		o.printRoom(v.Room)
	case response.Outcome:
		fmt.Fprintf(o.w, "Result: %s\n", v.Summary)
		fmt.Fprintf(o.w, "Placer: basket %d, score %d\n", v.PlacerBasket, v.PlacerScore)
		fmt.Fprintf(o.w, "Presenter: basket %d, score %d\n", v.PresenterBasket, v.PresenterScore)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		if v.Storage != "" {
			fmt.Fprintf(o.w, "Storage: %s\n", v.Storage)
		}
	default:
		o.printJSON(data)
	}
}

func seatLabel(s *response.Seat) string {
	if s == nil {
		return "(empty)"
	}
	return s.Identity.Short
}

func (o *Output) printRoom(r response.Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.ID)
	if r.DisplayName != "" {
		fmt.Fprintf(o.w, "Guest name: %s\n", r.DisplayName)
	}
	fmt.Fprintf(o.w, "Presenter: %s\n", seatLabel(r.Presenter))
	fmt.Fprintf(o.w, "Placer: %s\n", seatLabel(r.Placer))
	if r.Role != "" {
		fmt.Fprintf(o.w, "You are: %s\n", r.Role)
	}

	st := r.State
	fmt.Fprintf(o.w, "Phase: %s (turn %d of %d, compensation %d)\n", st.Phase, st.Turn, st.CoinCount, st.Compensation)
	for i, b := range st.Baskets {
		marker := " "
		if st.Offered != nil && *st.Offered == i {
			marker = "*"
		}
		fmt.Fprintf(o.w, " %s basket %d: %-12s sum %d\n", marker, i, joinInts(b), st.Sums[i])
	}
	fmt.Fprintf(o.w, "Remaining coins: %s\n", joinInts(st.Remaining))

	if r.Outcome != nil {
		headline := r.Headline
		if headline == "" {
			headline = r.Outcome.Summary
		}
		fmt.Fprintf(o.w, "Result: %s\n", headline)
	}
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
