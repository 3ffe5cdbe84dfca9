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


package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/syscon/config"
	"github.com/jetsetilly/syscon/console"
	"github.com/jetsetilly/syscon/hardware"
	"github.com/jetsetilly/syscon/logger"
	"github.com/jetsetilly/syscon/modalflag"
	"github.com/jetsetilly/syscon/notifications"
	"github.com/jetsetilly/syscon/paths"
	"github.com/jetsetilly/syscon/prefs"
	"github.com/jetsetilly/syscon/scenario"
	"github.com/jetsetilly/syscon/statsview"
	"github.com/jetsetilly/syscon/tapeimage"
	"github.com/jetsetilly/syscon/version"
	"github.com/jetsetilly/syscon/volume"
	"github.com/jetsetilly/syscon/wavwriter"
	"github.com/mattn/go-colorable"
)

const defaultVolume = "volume.img"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitVal := launch(ctx, os.Args[1:], colorable.NewColorableStdout())
	stop()
	os.Exit(exitVal)
}

// launch parses the arguments and runs the selected mode. the return value is
// the program's exit status.
func launch(ctx context.Context, args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()

	log := md.AddBool("log", false, "echo log to stdout")
	vol := md.AddString("volume", "", "volume image (default is in the resource directory)")
	cmdPrefs := md.AddString("prefs", "", "preference overrides (key::value; key::value)")
	showVersion := md.AddBool("version", false, "print version and exit")

	md.AddSubModes("DECK", "SIMULATE", "FORMAT", "IMPORT", "EXPORT", "LS", "SELECT")
	md.AddSubModeHelp("DECK", "interactive cassette deck")
	md.AddSubModeHelp("SIMULATE", "run a scripted scenario")
	md.AddSubModeHelp("FORMAT", "create an empty volume")
	md.AddSubModeHelp("IMPORT", "convert a WAV or MP3 file to a tape file on the volume")
	md.AddSubModeHelp("EXPORT", "convert a tape file on the volume to a WAV file")
	md.AddSubModeHelp("LS", "list tape files on the volume")
	md.AddSubModeHelp("SELECT", "set the tape file to play")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	if *showVersion {
		fmt.Fprintln(output, version.String())
		return 0
	}

	if *log {
		logger.SetEcho(logger.NewColorizer(output))
		defer logger.SetEcho(nil)
	}

	if *cmdPrefs != "" {
		prefs.PushCommandLineStack(*cmdPrefs)
		defer prefs.PopCommandLineStack()
	}

	if *vol == "" {
		*vol, err = paths.ResourcePath("", defaultVolume)
		if err != nil {
			fmt.Fprintf(output, "* error: %v\n", err)
			return 10
		}
	}

	switch md.Mode() {
	case "DECK":
		err = deckMode(ctx, md, *vol)
	case "SIMULATE":
		err = simulate(md, *vol)
	case "FORMAT":
		err = format(md, *vol)
	case "IMPORT":
		err = importTape(md, *vol)
	case "EXPORT":
		err = exportTape(md, *vol)
	case "LS":
		err = list(md, *vol)
	case "SELECT":
		err = selectTape(md, *vol)
	}

	if err != nil {
		logger.Logf(logger.Allow, "syscon", "%s: %v", md, err)
		fmt.Fprintf(output, "* error in %s mode: %s\n", md, err)
		return 20
	}

	return 0
}

// parse the flags for the current mode. returns true if the mode should
// continue.
func parse(md *modalflag.Modes, maxArgs int) (bool, error) {
	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return false, nil
	case modalflag.ParseError:
		return false, err
	}
	if len(md.RemainingArgs()) > maxArgs {
		return false, fmt.Errorf("too many arguments for %s mode", md)
	}
	return true, nil
}

// selector returns a function that sets the playback source preference and
// saves it to disk.
func selector(prf *config.Preferences) func(string) error {
	return func(filename string) error {
		if err := prf.Source.Set(filename); err != nil {
			return err
		}
		return prf.Save()
	}
}

// notifier echoes controller notices to the log.
func notifier() notifications.Notify {
	return notifications.NotifyFunc(func(notice notifications.Notice) error {
		logger.Log(logger.Allow, "notice", string(notice))
		return nil
	})
}

func deckMode(ctx context.Context, md *modalflag.Modes, volPath string) error {
	md.NewMode()

	keys := md.AddBool("keys", false, "single key commands")
	rate := md.AddInt("rate", 1000, "controller steps per second (0 is unlimited)")
	wav := md.AddString("wav", "", "write rendered tape blocks to wav file")
	recsrc := md.AddString("recsrc", "", "WAV or MP3 file to use as the recording signal")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))

	md.AdditionalHelp(`Commands in line mode are listed with the 'help' command. In key mode the
keys are p (play), r (record), s (stop), i (status), l (ls) and q (quit).`)

	if ok, err := parse(md, 0); !ok {
		return err
	}

	prf, err := config.NewPreferences("")
	if err != nil {
		return err
	}

	vol, err := volume.Open(volPath)
	if err != nil {
		return err
	}
	defer vol.Close()

	ctrl, err := hardware.NewController(vol, prf, notifier())
	if err != nil {
		return err
	}
	defer ctrl.End()

	if *wav != "" {
		ww, err := wavwriter.New(*wav, tapeimage.SampleRate)
		if err != nil {
			return err
		}
		ww.IncludeRecordings(true)
		ctrl.SetMonitor(ww)
		defer func() {
			if err := ww.End(); err != nil {
				fmt.Fprintf(md.Output, "* error: %v\n", err)
			}
		}()
	}

	if *recsrc != "" {
		img, err := importFile(*recsrc, "")
		if err != nil {
			return err
		}
		ctrl.SetRecordSource(bytes.NewReader(img.Data))
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("statsview is not available in this build")
		}
		stop := statsview.Launch(md.Output)
		defer stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx, *rate)
	}()

	con := console.NewConsole(ctrl, selector(prf), md.Output)
	if *keys {
		err = con.RunKeys(ctx)
	} else {
		err = con.RunLines(ctx, os.Stdin)
	}

	cancel()
	<-done

	return err
}

func simulate(md *modalflag.Modes, volPath string) error {
	md.NewMode()

	trace := md.AddBool("trace", true, "print each action as it is run")

	md.AdditionalHelp(`The scenario is a YAML file with a list of actions. For example:

  name: load game
  actions:
    - select: GAME.TAP
    - press: play
    - until: idle
    - expect:
        session: false`)

	if ok, err := parse(md, 1); !ok {
		return err
	}
	if md.GetArg(0) == "" {
		return fmt.Errorf("scenario file required for %s mode", md)
	}

	f, err := os.Open(md.GetArg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	script, err := scenario.Load(f)
	if err != nil {
		return err
	}

	prf, err := config.NewPreferences("")
	if err != nil {
		return err
	}

	vol, err := volume.Open(volPath)
	if err != nil {
		return err
	}
	defer vol.Close()

	ctrl, err := hardware.NewController(vol, prf, notifier())
	if err != nil {
		return err
	}
	defer ctrl.End()

	var out io.Writer = io.Discard
	if *trace {
		out = md.Output
	}

	err = scenario.Run(ctrl, selector(prf), script, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "scenario %q passed\n", script.Name)
	return nil
}

func format(md *modalflag.Modes, volPath string) error {
	md.NewMode()

	blocks := md.AddInt("blocks", volume.DefaultGeometry.Blocks, "number of blocks in the volume")
	entries := md.AddInt("entries", volume.DefaultGeometry.Entries, "number of directory entries")

	if ok, err := parse(md, 0); !ok {
		return err
	}

	g := volume.Geometry{Blocks: *blocks, Entries: *entries}
	if err := volume.Format(volPath, g); err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "formatted %s\n", volPath)
	return nil
}

// importFile decodes a host audio file. the name of the image is derived from
// the filename if name is empty.
func importFile(filename string, name string) (*tapeimage.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := tapeimage.Import(filepath.Base(filename), f)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		name = strings.ToUpper(name) + ".TAP"
	}
	img.Name = name

	return img, nil
}

func importTape(md *modalflag.Modes, volPath string) error {
	md.NewMode()

	name := md.AddString("name", "", "name of the tape file on the volume")

	if ok, err := parse(md, 1); !ok {
		return err
	}
	if md.GetArg(0) == "" {
		return fmt.Errorf("WAV or MP3 file required for %s mode", md)
	}

	img, err := importFile(md.GetArg(0), *name)
	if err != nil {
		return err
	}

	vol, err := volume.Open(volPath)
	if err != nil {
		return err
	}
	defer vol.Close()

	f, err := vol.Create(img.Name)
	if err != nil {
		return err
	}
	if _, err := f.Write(img.Data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintln(md.Output, tapeimage.Describe(img.Name, img.Data))
	return nil
}

func exportTape(md *modalflag.Modes, volPath string) error {
	md.NewMode()

	md.AdditionalHelp("If the WAV file is not named a unique filename is created in the current directory.")

	if ok, err := parse(md, 2); !ok {
		return err
	}
	name := md.GetArg(0)
	if name == "" {
		return fmt.Errorf("tape file required for %s mode", md)
	}

	dst := md.GetArg(1)
	if dst == "" {
		dst = paths.UniqueFilename("syscon", name, "wav")
	}

	vol, err := volume.Open(volPath)
	if err != nil {
		return err
	}
	defer vol.Close()

	f, err := vol.Open(name)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	err = tapeimage.Export(out, &tapeimage.Image{Name: name, Data: data})
	if err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "exported %s to %s\n", name, dst)
	return nil
}

func list(md *modalflag.Modes, volPath string) error {
	md.NewMode()

	if ok, err := parse(md, 0); !ok {
		return err
	}

	vol, err := volume.Open(volPath)
	if err != nil {
		return err
	}
	defer vol.Close()

	entries, err := vol.List()
	if err != nil {
		return err
	}

	for _, e := range entries {
		f, err := vol.Open(e.Name)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return err
		}
		fmt.Fprintln(md.Output, tapeimage.Describe(e.Name, data))
	}

	fmt.Fprintf(md.Output, "%d files, %d blocks free\n", len(entries), vol.Free())
	return nil
}

func selectTape(md *modalflag.Modes, volPath string) error {
	md.NewMode()

	md.AdditionalHelp("With no argument the current selection is cleared.")

	if ok, err := parse(md, 1); !ok {
		return err
	}

	prf, err := config.NewPreferences("")
	if err != nil {
		return err
	}

	name := md.GetArg(0)
	if name != "" {
		vol, err := volume.Open(volPath)
		if err != nil {
			return err
		}
		f, err := vol.Open(name)
		if err == nil {
			f.Close()
		}
		vol.Close()
		if err != nil {
			return err
		}
	}

	if err := selector(prf)(name); err != nil {
		return err
	}

	if name == "" {
		fmt.Fprintln(md.Output, "selection cleared")
	} else {
		fmt.Fprintf(md.Output, "selected %s\n", name)
	}
	return nil
}
