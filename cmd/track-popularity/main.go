// Command track-popularity serves the track popularity dashboard and looks up
// single tracks from the command line.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp(NewRunner(RunnerOpts{}))

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal("application error", "error", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "track-popularity",
		Usage: "Look up Spotify track popularity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides config and PORT)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config and HOST)",
			},
		},
		Action:   r.Serve,
		Commands: []*cli.Command{serveCommand(r), trackCommand(r)},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the web dashboard and JSON API",
		Action: r.Serve,
	}
}

func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Fetch a single track and print it as JSON",
		ArgsUsage: "<id|uri|url>",
		Action:    r.Track,
	}
}
