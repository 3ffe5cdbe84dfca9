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
	"fmt"

	"github.com/jetsetilly/syscon/fiber"
	"github.com/jetsetilly/syscon/filestore"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/logger"
	"github.com/jetsetilly/syscon/notifications"
)

const logTag = "cassette"

// Mode of the tape session.
type Mode int

// List of valid Mode values.
const (
	Idle Mode = iota
	Playing
	Recording
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	}
	return "unknown"
}

// Config supplies the filenames used by a tape session. Values are read only
// when a session starts.
type Config interface {
	// the file to play. the boolean is false if no file has been selected
	PlaybackSource() (string, bool)

	// the file that recordings are written to
	RecordDestination() string
}

// SessionState is a snapshot of the tape session.
type SessionState struct {
	Active      bool
	Mode        Mode
	Filename    string
	Position    int64
	Size        int64
	StopPending bool
}

func (s SessionState) String() string {
	if !s.Active {
		return "no session"
	}
	p := ""
	if s.StopPending {
		p = " (stop pending)"
	}
	return fmt.Sprintf("%s %s @ %d/%d%s", s.Mode, s.Filename, s.Position, s.Size, p)
}

// the tape session. a session exists when file is not nil
type session struct {
	mode        Mode
	file        filestore.File
	filename    string
	position    int64
	stopPending bool
}

// Engine services the deck on behalf of the tape session.
type Engine struct {
	port   deck.Port
	store  filestore.Store
	lock   *fiber.Mutex
	signal *fiber.Signal
	cfg    Config
	notify notifications.Notify

	// logging permission. defaults to logger.Allow
	Log logger.Permission

	session session
}

// NewEngine is the preferred method of initialisation for the Engine type.
//
// The lock is the file system lock and is held for the duration of every
// Step(). The signal is raised by Interrupt() and consumed by Run().
func NewEngine(port deck.Port, store filestore.Store, lock *fiber.Mutex, signal *fiber.Signal,
	cfg Config, notify notifications.Notify) *Engine {
	if notify == nil {
		notify = notifications.Discard
	}
	return &Engine{
		port:   port,
		store:  store,
		lock:   lock,
		signal: signal,
		cfg:    cfg,
		notify: notify,
		Log:    logger.Allow,
	}
}

// Interrupt is the deck interrupt handler. It must not block and it does not
// touch the session.
func (e *Engine) Interrupt() {
	logger.Logf(e.Log, logTag, "interrupt: %s", e.port.Status())
	e.signal.Raise()
}

// Run is the entry point for the engine task. It never returns.
func (e *Engine) Run(t *fiber.Task) {
	for {
		e.signal.Wait(t)
		e.Step(t)
	}
}

// Session returns a snapshot of the current tape session.
func (e *Engine) Session() SessionState {
	if e.session.file == nil {
		return SessionState{}
	}
	return SessionState{
		Active:      true,
		Mode:        e.session.mode,
		Filename:    e.session.filename,
		Position:    e.session.position,
		Size:        e.session.file.Size(),
		StopPending: e.session.stopPending,
	}
}

// Step examines the deck status and services the tape session accordingly.
// The task argument is the calling task and may be nil if the scheduler has
// not yet started.
func (e *Engine) Step(t *fiber.Task) {
	e.lock.Acquire(t)
	defer e.lock.Release()

	st := e.port.Status()

	if e.session.file != nil {
		if !st.Active() {
			e.finalise()
			return
		}
	} else {
		if !e.start(st) {
			return
		}
	}

	if st.Is(deck.NeedBlock) {
		e.service()
	}
}

// start a new session if the deck is playing or recording. returns true if
// a session exists on return.
func (e *Engine) start(st deck.Status) bool {
	var err error

	switch {
	case st.Is(deck.Playing):
		name, ok := e.cfg.PlaybackSource()
		if !ok {
			logger.Log(e.Log, logTag, "abort: no playback source selected")
			e.abort()
			return false
		}
		e.session.file, err = e.store.Open(name)
		e.session.filename = name
		e.session.mode = Playing

	case st.Is(deck.Recording):
		name := e.cfg.RecordDestination()
		e.session.file, err = e.store.Create(name)
		e.session.filename = name
		e.session.mode = Recording

	default:
		return false
	}

	if err != nil {
		logger.Logf(e.Log, logTag, "abort: %v", err)
		e.clear()
		e.abort()
		return false
	}

	e.session.position = 0
	e.session.stopPending = false

	logger.Logf(e.Log, logTag, "%s %s (%d bytes)", e.session.mode, e.session.filename, e.session.file.Size())

	if e.session.mode == Playing {
		e.notice(notifications.NotifyTapePlayStarted)
	} else {
		e.notice(notifications.NotifyTapeRecordStarted)
	}

	return true
}

// service the deck's request for the next block
func (e *Engine) service() {
	s := &e.session

	if s.stopPending {
		s.stopPending = false
		e.port.Command(deck.CmdStop)
		return
	}

	// end of file. the deck is given one more block period with nothing
	// transferred before it is stopped
	if s.mode == Playing && s.position >= s.file.Size() {
		e.port.Command(deck.CmdLoadBlock)
		s.stopPending = true
		return
	}

	err := s.file.Seek(s.position)
	if err != nil {
		logger.Logf(e.Log, logTag, "abort: %v", err)
		e.abandon()
		return
	}

	var blk uint32
	if s.mode == Playing {
		blk, err = s.file.Block(s.position)
	} else {
		blk, err = s.file.AllocateBlock(s.position)
	}
	if err != nil {
		logger.Logf(e.Log, logTag, "abort: %v", err)
		e.abandon()
		return
	}

	e.port.WriteBlockAddress(blk)
	e.port.Command(deck.CmdLoadBlock)
	s.position += deck.BlockSize
}

// finalise the session after the deck has stopped
func (e *Engine) finalise() {
	s := &e.session

	if s.mode == Recording {
		err := s.file.Seek(s.position)
		if err == nil {
			err = s.file.Truncate()
		}
		if err != nil {
			logger.Logf(e.Log, logTag, "truncate: %v", err)
		}
	}

	if err := s.file.Close(); err != nil {
		logger.Logf(e.Log, logTag, "close: %v", err)
	}

	logger.Logf(e.Log, logTag, "ended %s at %d", s.filename, s.position)
	e.clear()
	e.notice(notifications.NotifyTapeEnded)
}

// abandon the session without truncating the file
func (e *Engine) abandon() {
	e.port.Command(deck.CmdStop)
	if err := e.session.file.Close(); err != nil {
		logger.Logf(e.Log, logTag, "close: %v", err)
	}
	e.clear()
	e.notice(notifications.NotifyTapeAborted)
}

// stop the deck before a session has been created
func (e *Engine) abort() {
	e.port.Command(deck.CmdStop)
	e.notice(notifications.NotifyTapeAborted)
}

func (e *Engine) clear() {
	e.session = session{}
}

func (e *Engine) notice(n notifications.Notice) {
	if err := e.notify.Notify(n); err != nil {
		logger.Logf(e.Log, logTag, "notify: %v", err)
	}
}
