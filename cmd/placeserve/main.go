// Copyright 2025 The PlaceServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the place suggestion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

PlaceServe turns keystrokes into Google Places suggestions and a selected
suggestion into a normalized postal address. It can operate as a MessagePack
IPC server for a rendering layer (an editor, a form widget host), or as a CLI
application for testing and debugging lookups.

# Usage

Start the server with default settings:

	placeserve

Pass the API key and enable debug mode:

	placeserve -key $KEY -d

Run in CLI mode for interactive testing:

	placeserve -c

The key is taken from -key, then PLACESERVE_API_KEY (also read from .env),
then places.api_key in the config file.

# Configuration

Runtime configuration is managed through a TOML file:

	[pipeline]
	debounce_ms = 725
	distinct = true
	load_place_details = true
	fetch_fields = ["addressComponents"]

	[places]
	region_code = "ca"
	included_primary_types = ["address"]

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package server
for the frames:

	{"id": "1", "action": "input", "v": "10230 jasp"}
	{"ev": "options", "s": [...]}

# CLI Mode

CLI mode reads lines from stdin and prints suggestions with the matched
parts highlighted. Debounce is off, every line is searched.

	:1          select the first suggestion and print its address as YAML
	:opts region=ca types=address
	:refresh    start a new session

# Command Line Flags

	-d       Enable debug mode with detailed logging
	-c       Run in CLI mode instead of server mode
	-config  Path to a config file
	-key     Places API key
	-html    Print <b> markup instead of colors in CLI mode
	-rebuild-config
	         Rewrite the default config file with defaults and exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/placeserve/internal/cli"
	"github.com/bastiangx/placeserve/pkg/config"
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/server"
	"github.com/bastiangx/placeserve/pkg/session"
	"github.com/bastiangx/placeserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "placeserve"
	gh      = "https://github.com/bastiangx/placeserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, client, session and pipeline, then hands over to the
// server or the CLI. It does not implement logic for them.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Path to a custom config.toml")
	apiKey := flag.String("key", "", "Places API key (overrides config and env)")
	showHTML := flag.Bool("html", false, "CLI only: print <b> markup instead of colors")
	rebuild := flag.Bool("rebuild-config", false, "Rewrite the default config file and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	log.SetOutput(os.Stderr)

	if *rebuild {
		path, err := config.RebuildConfigFile()
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Printf("Wrote default config to %s", path)
		return
	}

	appConfig, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: (%s)", config.GetActiveConfigPath(usedPath))

	if *apiKey != "" {
		appConfig.Places.APIKey = *apiKey
	}
	if appConfig.Places.APIKey == "" {
		log.Fatalf("No API key: pass -key, set %s or places.api_key in the config", config.APIKeyEnv)
	}

	client := places.NewClient(appConfig.Places.APIKey, appConfig.ClientOptions()...)
	tokens := session.NewManager()

	// CLI would be mainly used for testing and dbg purposes.
	// Every line is searched and every selection loads details.
	if *cliMode {
		log.SetReportTimestamp(false)
		opts := append(appConfig.PipelineOptions(), suggest.WithoutDebounce(), suggest.WithPlaceDetails(true))
		pipeline := suggest.NewPipeline(client, tokens, opts...)

		inputHandler := cli.NewInputHandler(pipeline, tokens, cli.Options{
			ShowHTML: *showHTML || appConfig.CLI.ShowHTML,
			Request:  appConfig.RequestOptions(),
		})
		if err := inputHandler.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	pipeline := suggest.NewPipeline(client, tokens, appConfig.PipelineOptions()...)
	srv := server.NewServer(pipeline, tokens)

	showStartupInfo(usedPath)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ PlaceServe ] Address suggestions as you type!")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " PlaceServe ")
	fmt.Fprintln(os.Stderr, "============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")
}
