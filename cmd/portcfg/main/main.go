package main

import (
	"os"

	"github.com/arthur-debert/portcfg/cmd/portcfg"
)

func main() {
	os.Exit(portcfg.Run(os.Args[1:], os.Stdout, os.Stderr))
}
