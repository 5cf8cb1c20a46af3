package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"
)

type metadata struct {
	home   string
	config *Config
}

func main() {
	app := cli.NewApp()
	app.Name = "vaultd"
	app.Usage = "time-locked bond ledger"
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "home",
			Value: filepath.Join(os.ExpandEnv("$HOME"), ".vaultd"),
			Usage: " directory to store files under `DIR`",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: " configuration `FILE` [default: <home>/config.toml]",
		},
	}
	app.Commands = commands()

	app.Before = func(c *cli.Context) error {
		if c.Args().Get(0) == "version" {
			return nil
		}
		home := c.GlobalString("home")
		path := c.GlobalString("config")
		required := path != ""
		if path == "" {
			path = filepath.Join(home, "config.toml")
		}
		cfg, err := LoadConfig(path, required)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.App.Metadata["config"] = &metadata{home: home, config: cfg}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
