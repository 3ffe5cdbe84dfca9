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


package hardware_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/fiber"
	"github.com/jetsetilly/syscon/filestore"
	"github.com/jetsetilly/syscon/hardware"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/notifications"
	"github.com/jetsetilly/syscon/test"
	"github.com/jetsetilly/syscon/volume"
)

type config struct {
	source string
	pool   int
}

func (c *config) PlaybackSource() (string, bool) {
	return c.source, c.source != ""
}

func (c *config) RecordDestination() string {
	return "RECORD.TAP"
}

func (c *config) TicksPerBlock() int {
	return 2
}

func (c *config) StackPool() int {
	return c.pool
}

// monitor collects the tape data rendered by the deck
type monitor struct {
	played   bytes.Buffer
	recorded bytes.Buffer
}

func (m *monitor) TapeBlock(mode deck.Status, data []byte) {
	if mode.Is(deck.Playing) {
		m.played.Write(data)
	} else {
		m.recorded.Write(data)
	}
}

func tape(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 3)
	}
	return b
}

func newController(t *testing.T, cfg *config) (*hardware.Controller, *volume.Volume, *[]notifications.Notice) {
	t.Helper()

	vol, err := volume.NewMemory(volume.Geometry{Blocks: 64, Entries: 16})
	test.DemandSuccess(t, err)

	f, err := vol.Create("GAME.TAP")
	test.DemandSuccess(t, err)
	_, err = f.Write(tape(1024))
	test.DemandSuccess(t, err)
	f.Close()

	var notices []notifications.Notice
	notify := notifications.NotifyFunc(func(n notifications.Notice) error {
		notices = append(notices, n)
		return nil
	})

	if cfg.pool == 0 {
		cfg.pool = hardware.DefaultStackPool
	}

	c, err := hardware.NewController(vol, cfg, notify)
	test.DemandSuccess(t, err)
	t.Cleanup(c.End)

	return c, vol, &notices
}

func TestStackPool(t *testing.T) {
	vol, err := volume.NewMemory(volume.Geometry{Blocks: 64, Entries: 16})
	test.DemandSuccess(t, err)

	_, err = hardware.NewController(vol, &config{pool: 1024}, nil)
	test.ExpectSuccess(t, curated.Has(err, fiber.StackExhausted))
}

func TestPlayback(t *testing.T) {
	c, _, notices := newController(t, &config{source: "GAME.TAP"})

	var m monitor
	c.SetMonitor(&m)

	c.Press(deck.CmdPlay)
	test.ExpectSuccess(t, c.RunUntilIdle(100))
	test.ExpectEquality(t, c.Deck.Blocks(), 2)
	test.ExpectSuccess(t, bytes.Equal(m.played.Bytes(), tape(1024)))

	test.DemandEquality(t, len(*notices), 2)
	test.ExpectEquality(t, (*notices)[0], notifications.NotifyTapePlayStarted)
	test.ExpectEquality(t, (*notices)[1], notifications.NotifyTapeEnded)
}

func TestPlaybackWithoutSource(t *testing.T) {
	c, _, notices := newController(t, &config{})

	c.Press(deck.CmdPlay)
	test.ExpectSuccess(t, c.RunUntilIdle(100))
	test.ExpectEquality(t, c.Deck.Blocks(), 0)
	test.DemandEquality(t, len(*notices), 1)
	test.ExpectEquality(t, (*notices)[0], notifications.NotifyTapeAborted)
}

func TestRecording(t *testing.T) {
	c, vol, _ := newController(t, &config{})

	var m monitor
	c.SetMonitor(&m)
	c.SetRecordSource(bytes.NewReader(tape(700)))

	c.Press(deck.CmdRecord)
	test.ExpectSuccess(t, c.RunUntilIdle(100))
	test.ExpectEquality(t, c.Deck.Blocks(), 2)

	f, err := vol.Open("RECORD.TAP")
	test.DemandSuccess(t, err)
	defer f.Close()
	test.ExpectEquality(t, f.Size(), int64(1024))

	b, err := io.ReadAll(f)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(b[:700], tape(700)))
	test.ExpectSuccess(t, bytes.Equal(b, m.recorded.Bytes()))
}

func TestStopDuringPlayback(t *testing.T) {
	c, _, _ := newController(t, &config{source: "GAME.TAP"})

	c.Press(deck.CmdPlay)
	for i := 0; i < 5; i++ {
		c.Step()
	}
	test.ExpectSuccess(t, c.Session().Active)

	c.Press(deck.CmdStop)
	test.ExpectSuccess(t, c.RunUntilIdle(10))
	test.ExpectFailure(t, c.Session().Active)
}

func TestJobs(t *testing.T) {
	c, _, _ := newController(t, &config{source: "GAME.TAP"})

	var names []string
	done := c.Request(func(store filestore.Store) error {
		l, err := store.List()
		for _, e := range l {
			names = append(names, e.Name)
		}
		return err
	})

	// job runs while the tape is playing
	c.Press(deck.CmdPlay)
	test.ExpectSuccess(t, c.RunUntilIdle(100))

	select {
	case err := <-done:
		test.ExpectSuccess(t, err)
	default:
		t.Fatalf("job did not complete")
	}
	test.DemandEquality(t, len(names), 1)
	test.ExpectEquality(t, names[0], "GAME.TAP")

	// errors from jobs are returned
	done = c.Request(func(store filestore.Store) error {
		return store.Remove("MISSING.TAP")
	})
	c.RunUntilIdle(10)
	test.ExpectSuccess(t, curated.Is(<-done, filestore.NotFound))
}

func TestInterruptLine(t *testing.T) {
	c, _, _ := newController(t, &config{})

	var raised, handled int
	c.AttachInterrupt("test", func() bool {
		raised++
		return raised%2 == 0
	}, func() {
		handled++
	})

	for i := 0; i < 10; i++ {
		c.Step()
	}
	test.ExpectEquality(t, raised, 10)
	test.ExpectEquality(t, handled, 5)
	test.ExpectEquality(t, c.Steps(), 10)
}
