package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/m5frls/gedanbot/bot/app"
	"github.com/m5frls/gedanbot/core/buildinfo"
	"github.com/m5frls/gedanbot/core/cmd"
)

func main() {
	showVersion := flag.Bool("version", false, "print build info and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gedanbot %s (%s %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		return
	}

	if err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	}); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
