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


package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/hardware/cassette"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/logger"
	"gopkg.in/yaml.v2"
)

const logTag = "scenario"

// DefaultLimit is the maximum number of steps taken by the until action.
const DefaultLimit = 10000

// Sentinal patterns for errors returned by the scenario package.
const (
	BadScript  = "scenario: %v"
	BadAction  = "scenario: action %d: %s"
	Unexpected = "scenario: action %d: expected %s to be %v but it is %v"
)

// Expectation is the state expected by the expect action. Fields that are
// not specified are not checked.
type Expectation struct {
	Deck     string `yaml:"deck"`
	Session  *bool  `yaml:"session"`
	Mode     string `yaml:"mode"`
	Filename string `yaml:"filename"`
	Position *int64 `yaml:"position"`
	Blocks   *int   `yaml:"blocks"`
}

// Action is a single entry in the script. Exactly one of the fields, other
// than Limit, should be specified.
type Action struct {
	Press  string       `yaml:"press"`
	Run    int          `yaml:"run"`
	Until  string       `yaml:"until"`
	Limit  int          `yaml:"limit"`
	Select string       `yaml:"select"`
	Expect *Expectation `yaml:"expect"`
}

func (a Action) String() string {
	switch {
	case a.Press != "":
		return fmt.Sprintf("press %s", a.Press)
	case a.Run > 0:
		return fmt.Sprintf("run %d", a.Run)
	case a.Until != "":
		return fmt.Sprintf("until %s", a.Until)
	case a.Select != "":
		return fmt.Sprintf("select %s", a.Select)
	case a.Expect != nil:
		return "expect"
	}
	return "nothing"
}

func (a Action) count() int {
	n := 0
	if a.Press != "" {
		n++
	}
	if a.Run != 0 {
		n++
	}
	if a.Until != "" {
		n++
	}
	if a.Select != "" {
		n++
	}
	if a.Expect != nil {
		n++
	}
	return n
}

// Script is a list of actions.
type Script struct {
	Name    string   `yaml:"name"`
	Actions []Action `yaml:"actions"`
}

// Load script from YAML. Unknown fields are an error.
func Load(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf(BadScript, err)
	}

	var s Script
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, curated.Errorf(BadScript, err)
	}

	for i, a := range s.Actions {
		if a.count() != 1 {
			return nil, curated.Errorf(BadAction, i, "action must specify exactly one operation")
		}
		if a.Run < 0 {
			return nil, curated.Errorf(BadAction, i, "run count must be positive")
		}
		if a.Press != "" {
			if _, err := command(a.Press); err != nil {
				return nil, curated.Errorf(BadAction, i, err)
			}
		}
		if a.Until != "" && a.Until != "idle" {
			return nil, curated.Errorf(BadAction, i, "until only supports idle")
		}
	}

	return &s, nil
}

// Controller is the subset of the hardware.Controller used by a scenario.
type Controller interface {
	Press(cmd deck.Command)
	Step()
	RunUntilIdle(max int) bool
	DeckState() deck.Status
	Session() cassette.SessionState
	Blocks() int
}

// Selector sets the playback source.
type Selector func(filename string) error

func command(s string) (deck.Command, error) {
	switch strings.ToLower(s) {
	case "play":
		return deck.CmdPlay, nil
	case "record":
		return deck.CmdRecord, nil
	case "stop":
		return deck.CmdStop, nil
	}
	return 0, fmt.Errorf("unknown button: %s", s)
}

// Run the script against the controller. Each action is written to the trace
// writer, which can be nil. Run stops at the first action that fails.
func Run(ctrl Controller, sel Selector, s *Script, trace io.Writer) error {
	if trace == nil {
		trace = io.Discard
	}

	logger.Logf(logger.Allow, logTag, "running %q (%d actions)", s.Name, len(s.Actions))

	for i, a := range s.Actions {
		fmt.Fprintf(trace, "%3d: %s\n", i, a)

		switch {
		case a.Press != "":
			cmd, err := command(a.Press)
			if err != nil {
				return curated.Errorf(BadAction, i, err)
			}
			ctrl.Press(cmd)

		case a.Run > 0:
			for n := 0; n < a.Run; n++ {
				ctrl.Step()
			}

		case a.Until != "":
			limit := a.Limit
			if limit <= 0 {
				limit = DefaultLimit
			}
			if !ctrl.RunUntilIdle(limit) {
				return curated.Errorf(BadAction, i, fmt.Sprintf("not idle after %d steps", limit))
			}

		case a.Select != "":
			if sel == nil {
				return curated.Errorf(BadAction, i, "selection not possible")
			}
			if err := sel(a.Select); err != nil {
				return curated.Errorf(BadAction, i, err)
			}

		case a.Expect != nil:
			if err := expect(i, ctrl, a.Expect); err != nil {
				return err
			}
		}

		fmt.Fprintf(trace, "     deck %s: %s\n", ctrl.DeckState(), ctrl.Session())
	}

	return nil
}

func expect(i int, ctrl Controller, e *Expectation) error {
	if e.Deck != "" {
		if st := ctrl.DeckState().String(); st != e.Deck {
			return curated.Errorf(Unexpected, i, "deck", e.Deck, st)
		}
	}

	sess := ctrl.Session()

	if e.Session != nil && sess.Active != *e.Session {
		return curated.Errorf(Unexpected, i, "session", *e.Session, sess.Active)
	}
	if e.Mode != "" && sess.Mode.String() != e.Mode {
		return curated.Errorf(Unexpected, i, "mode", e.Mode, sess.Mode)
	}
	if e.Filename != "" && sess.Filename != e.Filename {
		return curated.Errorf(Unexpected, i, "filename", e.Filename, sess.Filename)
	}
	if e.Position != nil && sess.Position != *e.Position {
		return curated.Errorf(Unexpected, i, "position", *e.Position, sess.Position)
	}
	if e.Blocks != nil && ctrl.Blocks() != *e.Blocks {
		return curated.Errorf(Unexpected, i, "blocks", *e.Blocks, ctrl.Blocks())
	}

	return nil
}
