package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/internal/runner"
)

func main() {
	options := runner.ParseOptions()

	netsurveyRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup close handler
	go func() {
		<-c
		gologger.Info().Msg("Ctrl+C pressed in Terminal, finishing current run")
		cancel()
	}()

	err = netsurveyRunner.Run(ctx)
	netsurveyRunner.Close()
	if err != nil {
		gologger.Fatal().Msgf("Could not run netsurvey: %s\n", err)
	}
}
