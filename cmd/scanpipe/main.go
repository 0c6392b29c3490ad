package main

import (
	"os"

	scanpipecmd "github.com/kaiachai/scanpipe/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	scanpipecmd.SetVersionInfo(version, commit)
	os.Exit(scanpipecmd.Execute())
}
