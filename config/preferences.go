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


package config

import (
	"github.com/jetsetilly/syscon/hardware"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/paths"
	"github.com/jetsetilly/syscon/prefs"
)

// DefaultRecordDestination is the file that recordings are written to unless
// the preference has been changed.
const DefaultRecordDestination = "RECORD.TAP"

// Preferences defines and collates all the preference values used by the
// system controller.
type Preferences struct {
	dsk *prefs.Disk

	// the tape file played when the deck's PLAY button is pressed. an empty
	// string means that no file has been selected
	Source prefs.String

	// the tape file written to when the deck's RECORD button is pressed
	Destination prefs.String

	// the number of controller steps taken by the deck to render one block
	Ticks prefs.Int

	// the number of bytes in the scheduler's stack pool
	Pool prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. If the path is empty the preferences file in the resource
// directory is used.
func NewPreferences(pth string) (*Preferences, error) {
	p := &Preferences{}

	var err error

	if pth == "" {
		pth, err = paths.ResourcePath("", prefs.DefaultPrefsFile)
		if err != nil {
			return nil, err
		}
	}

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	p.Ticks.SetRange(1, 1000)
	p.Pool.SetRange(hardware.DefaultStackPool, 1<<20)
	p.Source.SetMaxLen(52)
	p.Destination.SetMaxLen(52)

	err = p.SetDefaults()
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("cassette.source", &p.Source)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("cassette.record", &p.Destination)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("deck.ticksPerBlock", &p.Ticks)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("controller.stackPool", &p.Pool)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() error {
	if err := p.Source.Reset(); err != nil {
		return err
	}
	if err := p.Destination.Set(DefaultRecordDestination); err != nil {
		return err
	}
	if err := p.Ticks.Set(deck.DefaultTicksPerBlock); err != nil {
		return err
	}
	return p.Pool.Set(hardware.DefaultStackPool)
}

// Load current preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// PlaybackSource implements the cassette.Config interface.
func (p *Preferences) PlaybackSource() (string, bool) {
	s := p.Source.String()
	return s, s != ""
}

// RecordDestination implements the cassette.Config interface.
func (p *Preferences) RecordDestination() string {
	if s := p.Destination.String(); s != "" {
		return s
	}
	return DefaultRecordDestination
}

// TicksPerBlock implements the hardware.Config interface.
func (p *Preferences) TicksPerBlock() int {
	return p.Ticks.Get().(int)
}

// StackPool implements the hardware.Config interface.
func (p *Preferences) StackPool() int {
	return p.Pool.Get().(int)
}
