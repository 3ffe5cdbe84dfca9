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


package notifications

// Notice describes events in the tape controller that the front end may want
// to present to the user.
type Notice string

const (
	// a tape session has started. the selected source file is now being
	// played or the destination file is being recorded
	NotifyTapePlayStarted   Notice = "NotifyTapePlayStarted"
	NotifyTapeRecordStarted Notice = "NotifyTapeRecordStarted"

	// the tape session ended normally after the deck stopped
	NotifyTapeEnded Notice = "NotifyTapeEnded"

	// the tape session could not start or was abandoned because of a file
	// error
	NotifyTapeAborted Notice = "NotifyTapeAborted"

	// a file job has been completed by the service task
	NotifyJobCompleted Notice = "NotifyJobCompleted"
)

// Notify is used for direct communication between the hardware and the
// front end.
type Notify interface {
	Notify(notice Notice) error
}

// NotifyFunc allows an ordinary function to be used as a Notify
// implementation.
type NotifyFunc func(notice Notice) error

// Notify implements the Notify interface.
func (f NotifyFunc) Notify(notice Notice) error {
	return f(notice)
}

// Discard is a Notify implementation that ignores all notices.
var Discard Notify = NotifyFunc(func(Notice) error { return nil })
