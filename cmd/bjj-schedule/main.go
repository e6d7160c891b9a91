package main

import "github.com/academiagorila/bjj-schedule/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
