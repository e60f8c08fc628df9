// Command nimble is a thin client for talking to a running nimbled agent
// over its HTTP control plane. It tars and gzips a project directory,
// submits it as a build, and can poll builds and deployments by ID.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context carries client-wide flags into every subcommand's Run method.
type Context struct {
	AgentAddr string
}

// CLI is the root kong command tree.
type CLI struct {
	AgentAddr string `short:"a" default:"http://127.0.0.1:7080" placeholder:"<url>" help:"base URL of the nimble agent"`

	Deploy      DeployCmd      `cmd:"" help:"submit a project directory as a new build"`
	Builds      BuildsCmd      `cmd:"" help:"list recent builds"`
	Build       BuildCmd       `cmd:"" help:"show a single build by ID"`
	Deployments DeploymentsCmd `cmd:"" help:"list recent deployments"`
	Deployment  DeploymentCmd  `cmd:"" help:"show a single deployment by ID"`
}

func main() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("nimble"),
		kong.Description("Client for the nimble application deployment agent."))

	err := ctx.Run(&Context{AgentAddr: cli.AgentAddr})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
