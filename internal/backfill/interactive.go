package backfill

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ckpl/auction-ingest/internal/store"
)

// Prompter asks one question and returns the trimmed answer. It returns
// io.EOF when the input is exhausted.
type Prompter interface {
	Prompt(question string) (string, error)
}

// LinePrompter reads answers line by line from a reader, writing the
// question to out first.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter over in and out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question; only "yes" or "y" confirms.
func Confirm(p Prompter, question string) (bool, error) {
	answer, err := p.Prompt(question + " (yes/no): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "yes", "y":
		return true, nil
	}
	return false, nil
}

// Choose interprets an operator's answer against the numbered menu. "0" and
// blank input skip the player; a number within the menu picks that entry;
// any other text is taken verbatim as the position.
func Choose(answer string, positions []string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" || answer == "0" {
		return "", false
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(positions) {
		return positions[n-1], true
	}
	return answer, true
}

// Interactive walks the players of a sport without a position and applies
// each operator choice immediately.
type Interactive struct {
	Store     store.Store
	Sport     string
	Positions []string
	Prompter  Prompter
	Out       io.Writer
	Logger    *slog.Logger
}

// Run asks about each candidate in turn. End of input stops the session
// without error; choices already applied stay applied.
func (it *Interactive) Run(ctx context.Context) (Result, error) {
	sportName := it.Sport
	if sportName == "" {
		sportName = DefaultSport
	}
	positions := it.Positions
	if positions == nil {
		positions = PositionsFor(sportName)
	}
	out := it.Out
	if out == nil {
		out = io.Discard
	}
	res := Result{Sport: sportName}

	_, players, err := MissingPositions(ctx, it.Store, sportName)
	if err != nil {
		return res, err
	}
	res.Candidates = len(players)
	if len(players) == 0 {
		fmt.Fprintf(out, "No %s players without positions found\n", sportName)
		return res, nil
	}

	fmt.Fprintf(out, "\nFound %d %s players without positions\n", len(players), sportName)
	question := "Enter position (or 0 to skip): "
	if len(positions) > 0 {
		fmt.Fprintln(out, "\nAvailable positions:")
		for i, pos := range positions {
			fmt.Fprintf(out, "%d. %s\n", i+1, pos)
		}
		question = "Enter position number (or type custom position): "
	}
	fmt.Fprintln(out, "0. Skip this player")

	for i, p := range players {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fmt.Fprintf(out, "\n[%d/%d] Player: %s\n", i+1, len(players), p.Name)
		answer, err := it.Prompter.Prompt(question)
		if errors.Is(err, io.EOF) {
			it.Logger.Info("Input closed, stopping", "remaining", len(players)-i)
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("read choice: %w", err)
		}

		position, ok := Choose(answer, positions)
		if !ok {
			res.Skipped++
			continue
		}
		if err := it.Store.UpdatePlayerPosition(ctx, p.ID, position); err != nil {
			res.Failed++
			res.AddErrorf("update %s (%d): %v", p.Name, p.ID, err)
			fmt.Fprintf(out, "✗ Error: %v\n", err)
			continue
		}
		res.Updated++
		fmt.Fprintf(out, "✓ Updated %s to %s\n", p.Name, position)
	}
	return res, nil
}
