package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/linuxmatters/envymix/internal/cli"
	"github.com/linuxmatters/envymix/internal/config"
	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/logging"
	"github.com/linuxmatters/envymix/internal/meter"
	"github.com/linuxmatters/envymix/internal/midiecho"
	"github.com/linuxmatters/envymix/internal/mixer"
	"github.com/linuxmatters/envymix/internal/source"
	"github.com/linuxmatters/envymix/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface. Settings flags override the
// config file only when given.
type CLI struct {
	Version   bool   `short:"v" help:"Show version information"`
	Config    string `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	SaveLinks bool   `help:"Write the stereo link state back to the config file on exit"`
	Once      bool   `help:"Print a plain report of every channel and exit"`
	Debug     string `type:"path" placeholder:"FILE" help:"Write a debug log while the panel is running"`

	Card     string `short:"D" group:"Card" help:"ALSA card number or control device"`
	Simulate bool   `group:"Card" help:"Use a simulated card instead of ALSA"`
	Source   string `type:"existingfile" placeholder:"FILE" group:"Card" help:"Feed the simulated meters from a WAV, AIFF, MP3 or Ogg file"`

	Inputs            int  `short:"i" group:"Channels" help:"Number of analog input channels (0-8)"`
	Outputs           int  `short:"o" group:"Channels" help:"Number of analog output channels (0-8)"`
	PCMOutputs        int  `short:"p" name:"pcm-outputs" group:"Channels" help:"Number of PCM playback streams (0-8)"`
	SPDIF             int  `short:"s" name:"spdif" group:"Channels" help:"Number of S/PDIF channels (0-2)"`
	ViewSPDIFPlayback bool `name:"view-spdif-playback" group:"Channels" help:"Show the S/PDIF playback streams in the mixer"`

	Interval     int    `short:"t" name:"interval" group:"Display" help:"Meter poll interval in milliseconds"`
	NoScaleMarks bool   `short:"n" group:"Display" help:"Hide the dB scale marks on sliders"`
	LightsColor  string `short:"l" name:"lights-color" placeholder:"#RRGGBB" group:"Display" help:"Meter bar colour"`
	BgColor      string `short:"b" name:"bg-color" placeholder:"#RRGGBB" group:"Display" help:"Meter background colour"`

	MIDI        string `name:"midi" placeholder:"PORT" group:"MIDI" help:"Echo mixer changes to a MIDI output port"`
	MIDIChannel int    `name:"midi-channel" group:"MIDI" help:"MIDI channel for echoed changes (0-15)"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("envymix"),
		kong.Description("Terminal control panel for ICE1712 (Envy24) sound cards"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	cfg := config.Default()
	if cliArgs.Config != "" {
		loaded, err := config.Load(cliArgs.Config)
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Apply(overrides(ctx, cliArgs))
	if err := cfg.Validate(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	// The debug log sees everything; the console is dropped while the
	// alternate screen owns the terminal
	console := logging.Console(os.Stderr)
	uiLog := logging.Logf(logging.Discard)
	if cliArgs.Debug != "" {
		debugLog, closer, err := logging.DebugFile(cliArgs.Debug, "")
		if err != nil {
			cli.PrintWarning(err.Error())
		} else {
			defer closer.Close()
			console = logging.Tee(console, debugLog)
			uiLog = debugLog
		}
	}
	logs := logging.NewSwitch(console)
	logf := logs.Logf

	hw, device, err := openCard(cfg, logf)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	reg := control.NewRegistry(hw)
	defer reg.Close()
	cli.PrintDevice(device, cfg.Simulate)

	var echo mixer.Echo
	if cfg.MIDIPort != "" {
		sender, err := midiecho.Open(cfg.MIDIPort, cfg.MIDIChannel, logf)
		if err != nil {
			cli.PrintWarning(err.Error())
		} else {
			defer sender.Close()
			cli.PrintMIDI(sender.Port(), cfg.MIDIChannel)
			echo = sender
		}
	}

	board := mixer.NewBoard(reg, mixer.Options{
		PCMOutputs:        cfg.PCMOutputs,
		Inputs:            cfg.InputChannels,
		Outputs:           cfg.OutputChannels,
		SPDIF:             cfg.SPDIFChannels,
		ViewSPDIFPlayback: cfg.ViewSPDIFPlayback,
		NoScaleMarks:      cfg.NoScaleMarks,
	}, echo, logf)
	board.RestoreLinks(cfg.Links)

	engine := meter.NewEngine(reg, meter.CompactLayout, logf)
	board.AttachMeters(engine)

	if cliArgs.Once || !term.IsTerminal(int(os.Stdout.Fd())) {
		board.SyncAll()
		engine.Tick()
		// the register latches between polls, so the second read covers
		// one full interval
		time.Sleep(cfg.Interval())
		engine.Tick()
		err := logging.WriteReport(os.Stdout, logging.ReportData{
			Device:   device,
			Time:     time.Now(),
			Interval: cfg.Interval(),
			Board:    board,
			Engine:   engine,
		})
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	logs.Set(uiLog)

	model := ui.NewModel(board, engine, ui.Options{
		Device:     device,
		Interval:   cfg.Interval(),
		Lights:     cfg.LightsColor,
		Background: cfg.BgColor,
		Logf:       uiLog,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()
	logs.Set(console)
	if runErr != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", runErr))
		os.Exit(1)
	}

	if cliArgs.SaveLinks && cliArgs.Config != "" {
		cfg.Links = board.Links()
		if err := config.Save(cliArgs.Config, cfg); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}
}

// openCard opens the ALSA card or builds the simulated one. Closing the
// simulated card also closes its source file.
func openCard(cfg config.Config, logf logging.Logf) (control.Hardware, string, error) {
	if !cfg.Simulate {
		card, err := control.OpenALSA(cfg.Card)
		if err != nil {
			return nil, "", fmt.Errorf("%w (try --simulate)", err)
		}
		return card, card.Device(), nil
	}

	sim := control.SimConfig{
		PCMOutputs: cfg.PCMOutputs,
		Inputs:     cfg.InputChannels,
		DACs:       cfg.OutputChannels,
		ADCs:       cfg.InputChannels,
	}
	device := "sim"
	if cfg.Source != "" {
		feed, err := source.NewFeeder(cfg.Source, cfg.Interval(), logf)
		if err != nil {
			return nil, "", err
		}
		logf("Feeding %s: %d channels, %d frames per poll", feed.Path(), feed.Channels(), feed.Frames())
		sim.Feed = feed
		device = "sim:" + feed.Path()
	}
	return control.NewSimCard(sim), device, nil
}

// overrides collects the settings flags given on the command line
func overrides(ctx *kong.Context, c *CLI) config.Overrides {
	given := make(map[string]bool)
	for _, f := range ctx.Flags() {
		if f.Set {
			given[f.Name] = true
		}
	}

	var o config.Overrides
	if given["card"] {
		o.Card = &c.Card
	}
	if given["simulate"] {
		o.Simulate = &c.Simulate
	}
	if given["source"] {
		o.Source = &c.Source
	}
	if given["inputs"] {
		o.InputChannels = &c.Inputs
	}
	if given["outputs"] {
		o.OutputChannels = &c.Outputs
	}
	if given["pcm-outputs"] {
		o.PCMOutputs = &c.PCMOutputs
	}
	if given["spdif"] {
		o.SPDIFChannels = &c.SPDIF
	}
	if given["view-spdif-playback"] {
		o.ViewSPDIFPlayback = &c.ViewSPDIFPlayback
	}
	if given["interval"] {
		o.IntervalMS = &c.Interval
	}
	if given["no-scale-marks"] {
		o.NoScaleMarks = &c.NoScaleMarks
	}
	if given["lights-color"] {
		o.LightsColor = &c.LightsColor
	}
	if given["bg-color"] {
		o.BgColor = &c.BgColor
	}
	if given["midi"] {
		o.MIDIPort = &c.MIDI
	}
	if given["midi-channel"] {
		o.MIDIChannel = &c.MIDIChannel
	}
	return o
}
