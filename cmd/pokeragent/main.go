package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Agent   AgentCmd         `cmd:"" help:"Run one agent against a table server"`
	Sandbox SandboxCmd       `cmd:"" help:"Run a local table server with house bots"`
	Play    PlayCmd          `cmd:"" help:"Run a sandbox and several agents in one process"`
	Eval    EvalCmd          `cmd:"" help:"Print the heuristic strength of a hand"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokeragent"),
		kong.Description("Adaptive poker agent and sandbox table"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
