package tui_controller

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/horockey/cardshelf/internal/presenter"
	"github.com/rs/zerolog"
)

type SubscribablePresenter interface {
	Presenter
	Subscribe() (<-chan presenter.State, func())
}

type TuiController struct {
	pr     SubscribablePresenter
	opts   []tea.ProgramOption
	logger zerolog.Logger
}

func New(pr SubscribablePresenter, logger zerolog.Logger, opts ...tea.ProgramOption) *TuiController {
	return &TuiController{
		pr:     pr,
		opts:   opts,
		logger: logger,
	}
}

// Start runs the program until user quits or ctx is done.
func (ctrl *TuiController) Start(ctx context.Context) error {
	states, cancel := ctrl.pr.Subscribe()
	defer cancel()

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, ctrl.opts...)
	p := tea.NewProgram(NewModel(ctx, ctrl.pr, states), opts...)

	ctrl.logger.Debug().Msg("starting tui")

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return fmt.Errorf("running context: %w", ctx.Err())
		}
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
