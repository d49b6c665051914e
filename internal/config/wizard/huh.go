package wizard

import (
	"context"

	"github.com/charmbracelet/huh"
)

// HuhPrompter prompts with charmbracelet/huh forms on a terminal.
type HuhPrompter struct{}

func (HuhPrompter) Input(ctx context.Context, field Field, def string) (string, error) {
	var value string
	input := huh.NewInput().
		Title(field.Title).
		Description(field.Description).
		Value(&value)
	if def != "" {
		input = input.Placeholder(def)
	}
	if field.Secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
		return "", err
	}
	return value, nil
}

func (HuhPrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, wipe it").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}
