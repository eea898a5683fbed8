// Command ledgerctl is the operator tool for the ledger: schema migrations,
// account setup and quick per-user reports against the configured store.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// globals holds options shared by every command.
type globals struct {
	EnvFile string `name:"env-file" default:".env" help:"Dotenv file to load before reading the environment."`
}

// cmdEnv is bound into every command's Run alongside the parsed globals.
type cmdEnv struct {
	*globals
	stdin  io.Reader
	stdout io.Writer
}

var cli struct {
	Globals globals `embed`

	Migrate    migrateCmd    `cmd help:"Apply the schema migrations for the configured store."`
	CreateUser createUserCmd `cmd name:"create-user" help:"Register a user account."`
	IssueToken issueTokenCmd `cmd name:"issue-token" help:"Print a bearer token for an existing user."`
	Summary    summaryCmd    `cmd help:"Print a user's totals and category breakdown."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ledgerctl"),
		kong.Description("Operator tool for the expense ledger."),
	)
	err := ctx.Run(&cmdEnv{globals: &cli.Globals, stdin: os.Stdin, stdout: os.Stdout})
	ctx.FatalIfErrorf(err)
}
