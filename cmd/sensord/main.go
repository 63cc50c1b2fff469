package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	fx "github.com/robotalks/humidistat/pkg/framework"
	env "github.com/robotalks/humidistat/pkg/sensor/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	runner := fx.NewRunner().HandleSignals()
	node := env.NewConfig().MustNewNode(runner.Context)
	runner.RunOrFail(node)
}
