// Package cli is the interactive operator menu.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/catalog"
	"github.com/abduss/photocat/internal/storeerr"
)

// Menu reads single-letter commands and dispatches them through a handler table.
type Menu struct {
	handlers map[catalog.Command]catalog.Handler
	scanner  *bufio.Scanner
	out      io.Writer
	prompter catalog.Prompter
	now      func() time.Time
	log      *zap.Logger
}

// NewMenu builds a menu over in and out.
func NewMenu(handlers map[catalog.Command]catalog.Handler, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	if log == nil {
		log = zap.NewNop()
	}
	scanner := bufio.NewScanner(in)
	return &Menu{
		handlers: handlers,
		scanner:  scanner,
		out:      out,
		prompter: NewTerminal(scanner, out),
		now:      time.Now,
		log:      log.Named("menu"),
	}
}

// Run loops until the operator exits, input ends or ctx is done. A failing
// command is reported and the menu is shown again.
func (m *Menu) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, "Welcome to the metadata tracking application.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		fmt.Fprint(m.out, "Enter the letter of your choice: ")
		if !m.scanner.Scan() {
			return m.scanner.Err()
		}

		cmd, err := catalog.ParseCommand(m.scanner.Text())
		if err != nil {
			fmt.Fprintln(m.out, "Invalid selection")
			continue
		}
		if cmd == catalog.CmdExit {
			fmt.Fprintln(m.out, "date and time =", m.now().Format("02/01/2006 15:04:05"))
			return nil
		}

		handler, ok := m.handlers[cmd]
		if !ok {
			fmt.Fprintln(m.out, "Invalid selection")
			continue
		}

		if err := handler(ctx, m.prompter); err != nil {
			m.log.Debug("command failed", zap.String("command", cmd.String()), zap.Error(err))
			fmt.Fprintf(m.out, "Error (%s): %v\n", storeerr.Label(err), err)
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out, "\nPlease choose one of the following options to continue:")
	for _, cmd := range catalog.Commands {
		fmt.Fprintf(m.out, "%s. %s\n", cmd, cmd.Description())
	}
}
