/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/testbed"
)

func main() {
	configPath := flag.String("config", "prism.toml", "path to the engine configuration")
	frames := flag.Int("frames", 120, "number of frames to run, 0 runs until interrupted")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		core.LogWarn("config '%s' not found, using the default configuration", *configPath)
		config = engine.DefaultConfig()
	} else if err != nil {
		core.LogFatal("failed to load config: %s", err.Error())
	}

	tb := testbed.NewTestGame(config)

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}
	defer engine.Shutdown()

	if err := engine.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		engine.Stop()
	}()

	// run engine
	if err := engine.Run(*frames); err != nil {
		core.LogError(err.Error())
	}
}
