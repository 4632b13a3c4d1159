package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/taurusgroup/multi-party-compute/pkg/config"
	cli "github.com/urfave/cli/v2"
)

var genConfigCmd = &cli.Command{
	Name:  "gen-config",
	Usage: "write the configuration of every party of a local session",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "parties", Value: 3, Usage: "number of parties"},
		&cli.IntFlag{Name: "base-port", Value: 9000, Usage: "first port, one per party plus one for transfers"},
		&cli.StringFlag{Name: "suite", Value: string(config.SuiteBGW), Usage: "bgw or tinytables"},
		&cli.StringFlag{Name: "dir", Value: ".", Usage: "output folder"},
	},
	Action: func(c *cli.Context) error {
		dir := c.String("dir")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for _, cfg := range config.Local(c.Int("parties"), c.Int("base-port"), config.Suite(c.String("suite"))) {
			if err := cfg.Validate(); err != nil {
				return err
			}
			path := filepath.Join(dir, fmt.Sprintf("party-%d.toml", cfg.Session.Party))
			if err := writeConfig(path, cfg); err != nil {
				return err
			}
			fmt.Println(path)
		}
		return nil
	},
}

func writeConfig(path string, cfg *config.Config) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return cfg.Encode(f)
}
