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


package prefs_test

import (
	"testing"

	"github.com/jetsetilly/syscon/prefs"
	"github.com/jetsetilly/syscon/test"
)

func TestCommandLineParsing(t *testing.T) {
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")

	prefs.PushCommandLineStack("cassette.source::GAME.TAP")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 1)
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "cassette.source::GAME.TAP")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)

	// surrounding whitespace is ignored
	prefs.PushCommandLineStack("  deck.ticksPerBlock::  8 ")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "deck.ticksPerBlock::8")

	// remaining pairs are listed in key order
	prefs.PushCommandLineStack("deck.ticksPerBlock::8; cassette.record::OUT.TAP")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "cassette.record::OUT.TAP; deck.ticksPerBlock::8")

	// pairs without a separator are dropped
	prefs.PushCommandLineStack("cassette.source=GAME.TAP")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")
	prefs.PushCommandLineStack("cassette.source=GAME.TAP;cassette.record::OUT.TAP")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "cassette.record::OUT.TAP")
}

func TestCommandLineRetrieval(t *testing.T) {
	prefs.PushCommandLineStack("cassette.source::GAME.TAP;cassette.record")

	ok, _ := prefs.GetCommandLinePref("cassette.record")
	test.ExpectFailure(t, ok)

	ok, v := prefs.GetCommandLinePref("cassette.source")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, prefs.Value("GAME.TAP"))

	// a value can only be retrieved once
	ok, _ = prefs.GetCommandLinePref("cassette.source")
	test.ExpectFailure(t, ok)

	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")
}

func TestCommandLineGroups(t *testing.T) {
	prefs.PushCommandLineStack("deck.ticksPerBlock::4")
	prefs.PushCommandLineStack("deck.ticksPerBlock::16")

	// only the most recent group is consulted
	ok, v := prefs.GetCommandLinePref("deck.ticksPerBlock")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, prefs.Value("16"))
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")

	test.ExpectEquality(t, prefs.PopCommandLineStack(), "deck.ticksPerBlock::4")
	test.ExpectEquality(t, prefs.SizeCommandLineStack(), 0)
}
