package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledtheatre/config"
	"github.com/coreman2200/ledtheatre/internal/app"
	"github.com/coreman2200/ledtheatre/sequence"
)

// options are the command line flags; config.yaml supplies the rest.
type options struct {
	fs          *flag.FlagSet
	configPath  *string
	programPath *string
	driver      *string
	repeat      *int
	pullUp      *bool
	monitorAddr *string
	simOnly     *bool
}

func defineFlags(fs *flag.FlagSet) *options {
	return &options{
		fs:          fs,
		configPath:  fs.String("config", "config.yaml", "path to config.yaml"),
		programPath: fs.String("program", "", "path to a program (YAML or JSON, seq.v1); empty runs the demo"),
		driver:      fs.String("driver", "", "driver: pca9685 | screen | sim (overrides config)"),
		repeat:      fs.Int("repeat", 0, "times to run the program (0 uses the program's repeat)"),
		pullUp:      fs.Bool("pull-up", false, "PWM pin sinks the LED current (anode on VCC); -pull-up=false overrides config"),
		monitorAddr: fs.String("monitor", "", "websocket monitor listen address, e.g. :8080"),
		simOnly:     fs.Bool("sim-only", false, "force simulation (no hardware output)"),
	}
}

// apply copies the flags given on the command line over cfg.
func (o *options) apply(cfg *config.Config) {
	if *o.driver != "" {
		cfg.Driver = *o.driver
	}
	o.fs.Visit(func(f *flag.Flag) {
		if f.Name == "pull-up" {
			cfg.PullUp = *o.pullUp
		}
	})
	if *o.monitorAddr != "" {
		cfg.MonitorAddr = *o.monitorAddr
	}
	if *o.simOnly {
		cfg.Driver = "sim"
	}
}

func main() {
	opts := defineFlags(flag.CommandLine)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*opts.configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *opts.configPath).Msg("config load failed; proceeding with defaults")
		cfg = config.Default()
	}
	opts.apply(cfg)
	zerolog.SetGlobalLevel(cfg.Level())

	core, err := app.InitCore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	// ---- Run until done or interrupted ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, core, opts)
	stop()
	if cerr := core.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("close")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}

// run plays the selected program on core, then switches everything off.
func run(ctx context.Context, core *app.Core, opts *options) error {
	prog := demoProgram()
	if *opts.programPath != "" {
		var err error
		if prog, err = sequence.LoadProgram(*opts.programPath); err != nil {
			return err
		}
	}
	seq, err := prog.Build(core.Sink, core.Options()...)
	if err != nil {
		return fmt.Errorf("build program: %w", err)
	}
	n := prog.Repeat
	if *opts.repeat > 0 {
		n = *opts.repeat
	}

	log.Info().Str("driver", core.Driver).Int("transitions", seq.Len()).Int("repeat", n).Msg("running sequence")
	if err := seq.Execute(ctx, n); err != nil {
		log.Warn().Err(err).Msg("sequence stopped")
	}
	if err := core.Blackout(context.Background()); err != nil {
		return fmt.Errorf("blackout: %w", err)
	}
	return nil
}

// demoProgram fades three LEDs in turn, blinks them, then chases across the
// board.
func demoProgram() sequence.Program {
	all := []int{0, 1, 2}
	return sequence.Program{
		Version: sequence.ProgramVersion,
		Steps: []sequence.Step{
			{Kind: sequence.StepSnap, LEDs: []sequence.LEDs{{Channels: all, Brightness: 0}}},
			{Kind: sequence.StepTransition, DurationS: 0.5, LEDs: []sequence.LEDs{{Channels: []int{0}, Brightness: 1}}},
			{Kind: sequence.StepTransition, DurationS: 1, LEDs: []sequence.LEDs{
				{Channels: []int{1}, Brightness: 1}, {Channels: []int{0}, Brightness: 0}}},
			{Kind: sequence.StepTransition, DurationS: 1, LEDs: []sequence.LEDs{
				{Channels: []int{2}, Brightness: 1}, {Channels: []int{1}, Brightness: 0}}},
			{Kind: sequence.StepTransition, DurationS: 0.5, LEDs: []sequence.LEDs{{Channels: []int{2}, Brightness: 0}}},
			{Kind: sequence.StepSleep, DurationS: 1},
			{Kind: sequence.StepSnap, LEDs: []sequence.LEDs{{Channels: all, Brightness: 1}}},
			{Kind: sequence.StepSleep, DurationS: 0.2},
			{Kind: sequence.StepSnap, LEDs: []sequence.LEDs{{Channels: all, Brightness: 0}}},
			{Kind: sequence.StepPattern, Pattern: sequence.Chase, DurationS: 0.5},
		},
	}
}
