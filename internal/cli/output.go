package cli

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/hupe1980/reslist/internal/config"
	"github.com/hupe1980/reslist/internal/render"
)

// newRenderer builds a renderer for w honouring --format and --no-color.
// Styling is only enabled when w is a terminal.
func newRenderer(cfg *config.Config, w io.Writer) (*render.Renderer, error) {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return nil, usageError(err)
	}

	return render.New(w,
		render.WithFormat(format),
		render.WithColor(!cfg.NoColor && isTerminal(w)),
	), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
