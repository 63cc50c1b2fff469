package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	env "github.com/robotalks/humidistat/pkg/bridge/env"
	fx "github.com/robotalks/humidistat/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	fx.NewRunner().HandleSignals().RunOrFail(env.Runnables()...)
}
