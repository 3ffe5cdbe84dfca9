// This file is part of Syscon.
//
// Syscon is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Syscon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Syscon.  If not, see <https://www.gnu.org/licenses/>.


package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/filestore"
	"github.com/jetsetilly/syscon/hardware"
	"github.com/jetsetilly/syscon/hardware/cassette"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/logger"
	"github.com/jetsetilly/syscon/tapeimage"
	"github.com/mattn/go-colorable"
)

// Sentinal patterns for errors returned by the console package.
const (
	UnknownCommand = "console: unknown command: %s"
	BadArguments   = "console: %s: %s"
)

// Controller is the subset of the hardware.Controller used by the console.
type Controller interface {
	Press(cmd deck.Command)
	Request(job hardware.Job) <-chan error
	DeckState() deck.Status
	Session() cassette.SessionState
	Scheduler() string
}

// Selector sets the playback source. An empty filename clears the selection.
type Selector func(filename string) error

// Console is the interactive front end to the controller.
type Console struct {
	ctrl Controller
	sel  Selector
	out  io.Writer
}

// NewConsole is the preferred method of initialisation for the Console type.
// If output is nil then colourised output is sent to stdout.
func NewConsole(ctrl Controller, sel Selector, output io.Writer) *Console {
	if output == nil {
		output = colorable.NewColorableStdout()
	}
	return &Console{
		ctrl: ctrl,
		sel:  sel,
		out:  output,
	}
}

const help = `play            press the PLAY button
record          press the RECORD button
stop            press the STOP button
status          show the state of the deck and tape session
ls              list the files on the volume
select [FILE]   select the file to play. no file clears the selection
rm FILE         remove a file from the volume
log [N]         show the last N log entries
quit            leave the console`

// RunLines reads commands from the input until the input is exhausted, a quit
// command is read or the context is cancelled.
func (con *Console) RunLines(ctx context.Context, input io.Reader) error {
	scanner := bufio.NewScanner(input)

	for {
		fmt.Fprint(con.out, pen(penPrompt, "syscon> "))

		if !scanner.Scan() {
			fmt.Fprintln(con.out)
			return scanner.Err()
		}

		quit, err := con.Command(ctx, scanner.Text())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(con.out, pen(penError, "%v", err))
		}
		if quit {
			return nil
		}
	}
}

// RunKeys reads single key presses from the terminal. Keys operate the deck
// directly:
//
//	p    play
//	r    record
//	s    stop
//	i    status
//	l    list files
//	q    quit
func (con *Console) RunKeys(ctx context.Context) error {
	pt, err := openTerminal()
	if err != nil {
		return err
	}
	defer pt.close()

	fmt.Fprintln(con.out, pen(penFeedback, "p:play r:record s:stop i:status l:list q:quit"))

	type keypress struct {
		key byte
		err error
	}
	keys := make(chan keypress)

	go func() {
		for {
			k, err := pt.readKey()
			select {
			case keys <- keypress{key: k, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k := <-keys:
			if k.err != nil {
				if k.err == io.EOF {
					return nil
				}
				return curated.Errorf("console: %v", k.err)
			}
			quit, err := con.Key(ctx, k.key)
			if err != nil {
				fmt.Fprintln(con.out, pen(penError, "%v", err))
			}
			if quit {
				return nil
			}
		}
	}
}

// Key handles a single key press. Returns true if the key requests that the
// console quits.
func (con *Console) Key(ctx context.Context, key byte) (bool, error) {
	switch key {
	case 'p', 'P':
		return con.Command(ctx, "play")
	case 'r', 'R':
		return con.Command(ctx, "record")
	case 's', 'S':
		return con.Command(ctx, "stop")
	case 'i', 'I':
		return con.Command(ctx, "status")
	case 'l', 'L':
		return con.Command(ctx, "ls")
	case 'q', 'Q', KeyCtrlC, KeyCtrlD, KeyEsc:
		return true, nil
	}
	return false, nil
}

// Command parses and runs a single command line. Returns true if the command
// requests that the console quits.
func (con *Console) Command(ctx context.Context, line string) (bool, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, curated.Errorf("console: %v", err)
	}
	if len(args) == 0 {
		return false, nil
	}

	cmd := strings.ToLower(args[0])
	args = args[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprintln(con.out, help)

	case "quit", "exit":
		return true, nil

	case "play":
		con.ctrl.Press(deck.CmdPlay)
	case "record":
		con.ctrl.Press(deck.CmdRecord)
	case "stop":
		con.ctrl.Press(deck.CmdStop)

	case "status":
		fmt.Fprintln(con.out, pen(penTape, "deck: %s", con.ctrl.DeckState()))
		fmt.Fprintln(con.out, pen(penTape, "tape: %s", con.ctrl.Session()))
		fmt.Fprintln(con.out, pen(penFeedback, "%s", con.ctrl.Scheduler()))

	case "ls":
		return false, con.list(ctx)

	case "select":
		if len(args) > 1 {
			return false, curated.Errorf(BadArguments, cmd, "too many arguments")
		}
		fn := ""
		if len(args) == 1 {
			fn = args[0]
		}
		return false, con.selectFile(ctx, fn)

	case "rm":
		if len(args) != 1 {
			return false, curated.Errorf(BadArguments, cmd, "a single filename is required")
		}
		err := con.wait(ctx, con.ctrl.Request(func(store filestore.Store) error {
			return store.Remove(args[0])
		}))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(con.out, pen(penFeedback, "removed %s", args[0]))

	case "log":
		n := 10
		if len(args) > 0 {
			n, err = strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return false, curated.Errorf(BadArguments, cmd, "number of entries must be a positive number")
			}
		}
		logger.Tail(logger.NewColorizer(con.out), n)

	default:
		return false, curated.Errorf(UnknownCommand, cmd)
	}

	return false, nil
}

// wait for the job to complete or for the context to be cancelled
func (con *Console) wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (con *Console) list(ctx context.Context) error {
	var summaries []tapeimage.Summary

	err := con.wait(ctx, con.ctrl.Request(func(store filestore.Store) error {
		entries, err := store.List()
		if err != nil {
			return err
		}

		for _, e := range entries {
			f, err := store.Open(e.Name)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return err
			}
			summaries = append(summaries, tapeimage.Describe(e.Name, data))
		}

		return nil
	}))
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Fprintln(con.out, pen(penFeedback, "volume is empty"))
		return nil
	}

	for _, s := range summaries {
		fmt.Fprintln(con.out, s)
	}

	return nil
}

func (con *Console) selectFile(ctx context.Context, fn string) error {
	if con.sel == nil {
		return curated.Errorf(BadArguments, "select", "selection is not possible")
	}

	if fn != "" {
		err := con.wait(ctx, con.ctrl.Request(func(store filestore.Store) error {
			f, err := store.Open(fn)
			if err != nil {
				return err
			}
			return f.Close()
		}))
		if err != nil {
			return err
		}
	}

	if err := con.sel(fn); err != nil {
		return err
	}

	if fn == "" {
		fmt.Fprintln(con.out, pen(penFeedback, "selection cleared"))
	} else {
		fmt.Fprintln(con.out, pen(penFeedback, "selected %s", fn))
	}

	return nil
}
