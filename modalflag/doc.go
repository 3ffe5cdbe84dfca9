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


// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Arguments are given to the Modes type with NewArgs() and then parsed with
// Parse(). Flags are added with the AddBool(), AddString(), etc. functions,
// before each call to Parse().
//
//	md = Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	verbose := md.AddBool("log", false, "echo log entries to stdout")
//	md.AddSubModes("SIMULATE", "DECK", "FORMAT")
//	_, _ = md.Parse()
//
// A mode is a special command line argument that when specified, puts the
// program into a different mode of operation, in the way that the go command
// has build, test, etc. modes. The first sub-mode in the list is the default
// mode and is selected if the first argument after the flags is not the name
// of a sub-mode. Sub-mode comparisons are case insensitive and are always
// reported in upper case.
//
// Once the mode is known, NewMode() prepares for a further call to Parse(),
// which can use a different set of flags and further sub-modes.
//
//	switch md.Mode() {
//	case "FORMAT":
//		md.NewMode()
//		blocks := md.AddInt("blocks", 8192, "number of blocks")
//		p, err := md.Parse()
//		switch p {
//		case modalflag.ParseError:
//			return err
//		case modalflag.ParseHelp:
//			return nil
//		}
//		format(md.GetArg(0), *blocks)
//	}
//
// Sub-modes can be described with AddSubModeHelp(). Descriptions are shown in
// the help message printed when the -help flag is given.
package modalflag
