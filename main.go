// Package main is the entry point for the lockstep application.
package main

import (
	"github.com/lockstep-cli/lockstep/cmd"
	"github.com/lockstep-cli/lockstep/config"
	"github.com/lockstep-cli/lockstep/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
