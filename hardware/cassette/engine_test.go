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


package cassette

import (
	"testing"

	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/fiber"
	"github.com/jetsetilly/syscon/filestore"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/logger"
	"github.com/jetsetilly/syscon/notifications"
	"github.com/jetsetilly/syscon/test"
	"github.com/jetsetilly/syscon/volume"
)

// port that records commands and block addresses. the status is set by the
// test and is not changed by commands
type fakePort struct {
	status deck.Status
	cmds   []deck.Command
	addrs  []uint32
}

func (p *fakePort) Status() deck.Status {
	return p.status
}

func (p *fakePort) Command(cmd deck.Command) {
	p.cmds = append(p.cmds, cmd)
}

func (p *fakePort) WriteBlockAddress(addr uint32) {
	p.addrs = append(p.addrs, addr)
}

type fakeConfig struct {
	source string
}

func (c fakeConfig) PlaybackSource() (string, bool) {
	return c.source, c.source != ""
}

func (c fakeConfig) RecordDestination() string {
	return "RECORD.TAP"
}

// store that counts file operations
type countingStore struct {
	filestore.Store
	ops      int
	failSeek bool
	files    []*countingFile
}

func (s *countingStore) Open(name string) (filestore.File, error) {
	s.ops++
	f, err := s.Store.Open(name)
	if err != nil {
		return nil, err
	}
	return s.wrap(f), nil
}

func (s *countingStore) Create(name string) (filestore.File, error) {
	s.ops++
	f, err := s.Store.Create(name)
	if err != nil {
		return nil, err
	}
	return s.wrap(f), nil
}

func (s *countingStore) wrap(f filestore.File) *countingFile {
	cf := &countingFile{File: f, store: s}
	s.files = append(s.files, cf)
	return cf
}

type countingFile struct {
	filestore.File
	store  *countingStore
	closed bool
}

func (f *countingFile) Read(p []byte) (int, error) {
	f.store.ops++
	return f.File.Read(p)
}

func (f *countingFile) Write(p []byte) (int, error) {
	f.store.ops++
	return f.File.Write(p)
}

func (f *countingFile) Seek(offset int64) error {
	f.store.ops++
	if f.store.failSeek {
		return curated.Errorf(filestore.BadOffset, offset, f.Name())
	}
	return f.File.Seek(offset)
}

func (f *countingFile) Truncate() error {
	f.store.ops++
	return f.File.Truncate()
}

func (f *countingFile) Block(offset int64) (uint32, error) {
	f.store.ops++
	return f.File.Block(offset)
}

func (f *countingFile) AllocateBlock(offset int64) (uint32, error) {
	f.store.ops++
	return f.File.AllocateBlock(offset)
}

func (f *countingFile) Close() error {
	f.closed = true
	return f.File.Close()
}

type fixture struct {
	vol     *volume.Volume
	store   *countingStore
	port    *fakePort
	notices []notifications.Notice
	eng     *Engine
}

// create a fixture with a tape file of the specified size. the scheduler has
// no tasks so the file system lock is bypassed and Step() can be called
// directly
func newFixture(t *testing.T, source string, size int) *fixture {
	t.Helper()

	vol, err := volume.NewMemory(volume.Geometry{Blocks: 64, Entries: 16})
	test.DemandSuccess(t, err)

	if size >= 0 {
		f, err := vol.Create("GAME.TAP")
		test.DemandSuccess(t, err)
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i)
		}
		_, err = f.Write(data)
		test.DemandSuccess(t, err)
		test.DemandSuccess(t, f.Close())
	}

	fx := &fixture{
		vol:   vol,
		store: &countingStore{Store: vol},
		port:  &fakePort{},
	}

	sched := fiber.NewScheduler(4096)
	notify := notifications.NotifyFunc(func(n notifications.Notice) error {
		fx.notices = append(fx.notices, n)
		return nil
	})
	fx.eng = NewEngine(fx.port, fx.store, fiber.NewMutex(sched), fiber.NewSignal(sched), fakeConfig{source: source}, notify)
	fx.eng.Log = &logger.Quiet{Silent: true}

	return fx
}

func (fx *fixture) blockOf(t *testing.T, name string, offset int64) uint32 {
	t.Helper()
	f, err := fx.vol.Open(name)
	test.DemandSuccess(t, err)
	defer f.Close()
	b, err := f.Block(offset)
	test.DemandSuccess(t, err)
	return b
}

func (fx *fixture) sizeOf(t *testing.T, name string) int64 {
	t.Helper()
	l, err := fx.vol.List()
	test.DemandSuccess(t, err)
	for _, e := range l {
		if e.Name == name {
			return e.Size
		}
	}
	t.Fatalf("%s not found", name)
	return 0
}

func TestPlayback(t *testing.T) {
	fx := newFixture(t, "GAME.TAP", 1024)
	b0 := fx.blockOf(t, "GAME.TAP", 0)
	b1 := fx.blockOf(t, "GAME.TAP", 512)

	// session opens. no block is needed yet
	fx.port.status = deck.Playing
	fx.eng.Step(nil)
	s := fx.eng.Session()
	test.ExpectSuccess(t, s.Active)
	test.ExpectEquality(t, s.Mode, Playing)
	test.ExpectEquality(t, s.Filename, "GAME.TAP")
	test.ExpectEquality(t, s.Position, int64(0))
	test.ExpectEquality(t, s.Size, int64(1024))
	test.ExpectEquality(t, len(fx.port.cmds), 0)

	fx.port.status = deck.Playing | deck.NeedBlock
	fx.eng.Step(nil)
	test.ExpectEquality(t, fx.eng.Session().Position, int64(512))
	test.DemandEquality(t, len(fx.port.addrs), 1)
	test.ExpectEquality(t, fx.port.addrs[0], b0)
	test.ExpectEquality(t, fx.port.cmds[0], deck.CmdLoadBlock)

	fx.eng.Step(nil)
	test.ExpectEquality(t, fx.eng.Session().Position, int64(1024))
	test.DemandEquality(t, len(fx.port.addrs), 2)
	test.ExpectEquality(t, fx.port.addrs[1], b1)

	// end of file. one more LOAD_BLOCK with no address
	fx.eng.Step(nil)
	test.ExpectEquality(t, len(fx.port.addrs), 2)
	test.DemandEquality(t, len(fx.port.cmds), 3)
	test.ExpectEquality(t, fx.port.cmds[2], deck.CmdLoadBlock)
	test.ExpectSuccess(t, fx.eng.Session().StopPending)

	fx.eng.Step(nil)
	test.DemandEquality(t, len(fx.port.cmds), 4)
	test.ExpectEquality(t, fx.port.cmds[3], deck.CmdStop)
	test.ExpectFailure(t, fx.eng.Session().StopPending)
	test.ExpectSuccess(t, fx.eng.Session().Active)

	// deck has stopped. session closes
	fx.port.status = 0
	fx.eng.Step(nil)
	test.ExpectFailure(t, fx.eng.Session().Active)
	test.DemandEquality(t, len(fx.store.files), 1)
	test.ExpectSuccess(t, fx.store.files[0].closed)
	test.ExpectEquality(t, len(fx.port.cmds), 4)

	test.DemandEquality(t, len(fx.notices), 2)
	test.ExpectEquality(t, fx.notices[0], notifications.NotifyTapePlayStarted)
	test.ExpectEquality(t, fx.notices[1], notifications.NotifyTapeEnded)
}

func TestEmptyTape(t *testing.T) {
	fx := newFixture(t, "GAME.TAP", 0)

	// session opens and the block is serviced in the same step
	fx.port.status = deck.Playing | deck.NeedBlock
	fx.eng.Step(nil)
	test.ExpectSuccess(t, fx.eng.Session().Active)
	test.ExpectSuccess(t, fx.eng.Session().StopPending)
	test.DemandEquality(t, len(fx.port.cmds), 1)
	test.ExpectEquality(t, fx.port.cmds[0], deck.CmdLoadBlock)

	fx.eng.Step(nil)
	test.DemandEquality(t, len(fx.port.cmds), 2)
	test.ExpectEquality(t, fx.port.cmds[1], deck.CmdStop)
	test.ExpectEquality(t, len(fx.port.addrs), 0)

	fx.port.status = 0
	fx.eng.Step(nil)
	test.ExpectFailure(t, fx.eng.Session().Active)
	test.ExpectEquality(t, len(fx.port.cmds), 2)
}

func TestIdempotence(t *testing.T) {
	fx := newFixture(t, "GAME.TAP", 1024)

	fx.port.status = deck.Playing
	fx.eng.Step(nil)
	ops := fx.store.ops

	for i := 0; i < 5; i++ {
		fx.eng.Step(nil)
	}
	test.ExpectEquality(t, fx.store.ops, ops)
	test.ExpectEquality(t, len(fx.port.cmds), 0)
	test.ExpectEquality(t, len(fx.port.addrs), 0)

	// stopped deck and no session
	fx.port.status = 0
	fx.eng.Step(nil)
	ops = fx.store.ops
	for i := 0; i < 5; i++ {
		fx.eng.Step(nil)
	}
	test.ExpectEquality(t, fx.store.ops, ops)
	test.ExpectEquality(t, len(fx.port.cmds), 0)
}

func TestRecording(t *testing.T) {
	fx := newFixture(t, "", -1)

	fx.port.status = deck.Recording | deck.NeedBlock
	fx.eng.Step(nil)
	fx.eng.Step(nil)
	s := fx.eng.Session()
	test.ExpectEquality(t, s.Mode, Recording)
	test.ExpectEquality(t, s.Filename, "RECORD.TAP")
	test.ExpectEquality(t, s.Position, int64(1024))
	test.ExpectEquality(t, s.Size, int64(1024))
	test.ExpectEquality(t, len(fx.port.addrs), 2)
	test.ExpectInequality(t, fx.port.addrs[0], fx.port.addrs[1])

	fx.port.status = 0
	fx.eng.Step(nil)
	test.ExpectFailure(t, fx.eng.Session().Active)
	test.ExpectEquality(t, fx.sizeOf(t, "RECORD.TAP"), int64(1024))

	test.DemandEquality(t, len(fx.notices), 2)
	test.ExpectEquality(t, fx.notices[0], notifications.NotifyTapeRecordStarted)
}

func TestRecordingTruncation(t *testing.T) {
	fx := newFixture(t, "", -1)

	fx.port.status = deck.Recording | deck.NeedBlock
	fx.eng.Step(nil)
	fx.eng.Step(nil)
	test.ExpectEquality(t, fx.eng.Session().Size, int64(1024))

	// the file is truncated to the byte position, not to the block
	fx.eng.session.position = 700
	fx.port.status = 0
	fx.eng.Step(nil)
	test.ExpectEquality(t, fx.sizeOf(t, "RECORD.TAP"), int64(700))
	test.ExpectEquality(t, fx.vol.Free(), 58)
}

func TestPlayingPrecedence(t *testing.T) {
	fx := newFixture(t, "GAME.TAP", 512)

	fx.port.status = deck.Playing | deck.Recording
	fx.eng.Step(nil)
	test.ExpectEquality(t, fx.eng.Session().Mode, Playing)

	_, err := fx.vol.Open("RECORD.TAP")
	test.ExpectSuccess(t, curated.Is(err, filestore.NotFound))
}

func TestNoSource(t *testing.T) {
	fx := newFixture(t, "", 512)

	fx.port.status = deck.Playing | deck.NeedBlock
	fx.eng.Step(nil)
	test.ExpectFailure(t, fx.eng.Session().Active)
	test.DemandEquality(t, len(fx.port.cmds), 1)
	test.ExpectEquality(t, fx.port.cmds[0], deck.CmdStop)
	test.ExpectEquality(t, fx.store.ops, 0)
	test.DemandEquality(t, len(fx.notices), 1)
	test.ExpectEquality(t, fx.notices[0], notifications.NotifyTapeAborted)
}

func TestOpenFailure(t *testing.T) {
	fx := newFixture(t, "MISSING.TAP", 512)

	fx.port.status = deck.Playing | deck.NeedBlock
	fx.eng.Step(nil)
	test.ExpectFailure(t, fx.eng.Session().Active)
	test.DemandEquality(t, len(fx.port.cmds), 1)
	test.ExpectEquality(t, fx.port.cmds[0], deck.CmdStop)
	test.ExpectEquality(t, len(fx.port.addrs), 0)
}

func TestSeekFailure(t *testing.T) {
	fx := newFixture(t, "", -1)

	fx.port.status = deck.Recording | deck.NeedBlock
	fx.eng.Step(nil)
	test.ExpectEquality(t, fx.sizeOf(t, "RECORD.TAP"), int64(512))

	fx.store.failSeek = true
	fx.eng.Step(nil)
	test.ExpectFailure(t, fx.eng.Session().Active)
	test.DemandEquality(t, len(fx.port.cmds), 2)
	test.ExpectEquality(t, fx.port.cmds[1], deck.CmdStop)
	test.ExpectSuccess(t, fx.store.files[0].closed)

	// abandoned sessions are not truncated
	test.ExpectEquality(t, fx.sizeOf(t, "RECORD.TAP"), int64(512))
	test.ExpectEquality(t, fx.notices[len(fx.notices)-1], notifications.NotifyTapeAborted)
}

func TestEngineTask(t *testing.T) {
	fx := newFixture(t, "GAME.TAP", 1024)

	sched := fiber.NewScheduler(4096)
	defer sched.End()

	signal := fiber.NewSignal(sched)
	eng := NewEngine(fx.port, fx.store, fiber.NewMutex(sched), signal, fakeConfig{source: "GAME.TAP"}, nil)
	eng.Log = &logger.Quiet{Silent: true}

	_, err := sched.Spawn("cassette", 1024, eng.Run)
	test.DemandSuccess(t, err)

	// task runs to its first wait
	sched.RunOnce()
	test.ExpectFailure(t, eng.Session().Active)

	// status change without an interrupt is not seen
	fx.port.status = deck.Playing
	sched.RunOnce()
	test.ExpectFailure(t, eng.Session().Active)

	eng.Interrupt()
	sched.RunOnce()
	test.ExpectSuccess(t, eng.Session().Active)

	fx.port.status = 0
	eng.Interrupt()
	eng.Interrupt()
	sched.RunOnce()
	test.ExpectFailure(t, eng.Session().Active)
	test.ExpectFailure(t, signal.Pending())
}
