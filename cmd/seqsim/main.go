package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledtheatre/driver/fake"
	"github.com/coreman2200/ledtheatre/sequence"
	"github.com/coreman2200/ledtheatre/sink"
)

// seqsim dry-runs a program on a virtual clock and prints every duty command
// that would reach the board.
func main() {
	var (
		programPath string
		channels    int
		quantumMs   int
		pullUp      bool
		verbose     bool
	)
	flag.StringVar(&programPath, "program", "", "Path to program (YAML or JSON, seq.v1)")
	flag.IntVar(&channels, "channels", sink.DefaultChannels, "Addressable PWM channels")
	flag.IntVar(&quantumMs, "quantum", 50, "Fade update interval (ms)")
	flag.BoolVar(&pullUp, "pull-up", false, "Simulate pull-up wiring")
	flag.BoolVar(&verbose, "v", false, "Log transitions and fade progress")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if programPath == "" {
		log.Fatal().Msg("Provide -program path to a program file")
	}
	prog, err := sequence.LoadProgram(programPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load program")
	}

	drv := &fake.Driver{Out: os.Stdout}
	out := sink.New(channels)
	out.Init(drv, pullUp)

	clock := sequence.NewVirtualClock(time.Unix(0, 0))
	seq, err := prog.Build(out, sequence.WithClock(clock),
		sequence.WithQuantum(time.Duration(quantumMs)*time.Millisecond))
	if err != nil {
		log.Fatal().Err(err).Msg("build program")
	}
	if verbose {
		fmt.Print(seq)
	}
	if err := seq.Execute(context.Background(), prog.Repeat); err != nil {
		log.Fatal().Err(err).Msg("execute")
	}
	fmt.Printf("Done: %d transitions, %d duty commands, %v simulated\n",
		seq.Len(), drv.Count(), clock.Slept())
}
