package conflict

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// ErrNotInteractive is returned by PromptResolution when stdout isn't a
// terminal and no fallback resolution was supplied by the caller.
var ErrNotInteractive = errors.New("conflict: cannot prompt for resolution outside a terminal")

// IsInteractive reports whether the current process is attached to a
// terminal capable of rendering a huh form.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// PromptResolution asks the user how to resolve c, offering smart-merge,
// keep-local, keep-remote, and keep-both. Returns huh.ErrUserAborted if the
// user cancels the prompt.
func PromptResolution(c *Conflict) (Resolution, error) {
	if !IsInteractive() {
		return Pending, ErrNotInteractive
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Conflict: %s", c.SessionID)).
				Description(c.Describe()),
			huh.NewSelect[string]().
				Title("How should this conflict be resolved?").
				Options(
					huh.NewOption("Smart merge (combine both conversation trees)", "smart-merge"),
					huh.NewOption("Keep local (discard remote changes)", "keep-local"),
					huh.NewOption("Keep remote (discard local changes)", "keep-remote"),
					huh.NewOption("Keep both (save remote copy alongside)", "keep-both"),
				).
				Value(&choice),
		),
	)

	if err := form.Run(); err != nil {
		return Pending, fmt.Errorf("conflict resolution prompt failed: %w", err)
	}

	switch choice {
	case "smart-merge":
		return SmartMerge, nil
	case "keep-local":
		return KeepLocal, nil
	case "keep-remote":
		return KeepRemote, nil
	case "keep-both":
		return KeepBoth, nil
	default:
		return Pending, fmt.Errorf("conflict: unrecognized prompt choice %q", choice)
	}
}

// ResolveAll walks every conflict in conflicts, setting its resolution via
// PromptResolution when interactive, or via fallback when it isn't (or when
// the prompt is aborted). out receives a one-line notice per conflict
// resolved non-interactively, matching the teacher's pattern of writing
// command progress to the command's own writer rather than a package-level
// logger.
func ResolveAll(conflicts []*Conflict, fallback Resolution, out io.Writer) error {
	for _, c := range conflicts {
		if !IsInteractive() {
			c.Resolution = fallback
			fmt.Fprintf(out, "Conflict %s: using default resolution %q (non-interactive)\n", c.SessionID, fallback)
			continue
		}

		resolution, err := PromptResolution(c)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				c.Resolution = fallback
				continue
			}
			return err
		}
		c.Resolution = resolution
	}
	return nil
}
