// Package prompt provides interactive terminal prompts for collecting user input.
package prompt

import (
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jayteealao/gigit/internal/validate"
)

// RepoPaths holds the repository paths entered by the user.
type RepoPaths struct {
	Backend  string
	Frontend string
}

// Clean trims surrounding whitespace from both paths.
func (p RepoPaths) Clean() RepoPaths {
	return RepoPaths{
		Backend:  strings.TrimSpace(p.Backend),
		Frontend: strings.TrimSpace(p.Frontend),
	}
}

// Options configures a prompt.
type Options struct {
	In  io.Reader
	Out io.Writer

	// Accessible replaces the TUI with line prompts, for terminals that
	// cannot draw it.
	Accessible bool
}

func (o Options) apply(form *huh.Form) *huh.Form {
	if o.In != nil {
		form = form.WithInput(o.In)
	}
	if o.Out != nil {
		form = form.WithOutput(o.Out)
	}
	return form.WithAccessible(o.Accessible)
}

// CollectRepoPaths prompts for the backend and frontend repository paths.
// Each answer must be an existing git repository; defaults prefill the inputs.
func CollectRepoPaths(defaults RepoPaths, opts Options) (RepoPaths, error) {
	paths := defaults

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend repository path").
				Description("Working tree of the backend repository").
				Placeholder("~/code/api").
				Value(&paths.Backend).
				Validate(validateRepoPath),
			huh.NewInput().
				Title("Frontend repository path").
				Description("Working tree of the frontend repository").
				Placeholder("~/code/web").
				Value(&paths.Frontend).
				Validate(validateRepoPath),
		),
	)

	if err := opts.apply(form).Run(); err != nil {
		return RepoPaths{}, err
	}

	return paths.Clean(), nil
}

// ConfirmAction prompts the user to confirm an action with yes/no.
// Returns true if the user confirmed, false otherwise.
func ConfirmAction(title, description string, opts Options) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed).
				Affirmative("Yes").
				Negative("No"),
		),
	)

	if err := opts.apply(form).Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func validateRepoPath(s string) error {
	return validate.RepoPath(strings.TrimSpace(s))
}
