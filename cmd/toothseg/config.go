package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/toothseg/internal/logger"
)

// cmdConfig prints the effective configuration or writes it to a file.
func cmdConfig(args []string) {
	c := newCommand("config", "config [options]")
	out := c.fs.String("o", "", "Write the config to this file instead of stdout")
	save := c.fs.Bool("save", false, "Write the config to the user config directory")
	c.parse(args)
	defer logger.Sync()

	switch {
	case *save:
		if err := c.cfg.Save(); err != nil {
			fatal(err)
		}
		fmt.Println("Config saved")
	case *out != "":
		if err := c.cfg.SaveTo(*out); err != nil {
			fatal(err)
		}
		fmt.Printf("Config written to %s\n", *out)
	default:
		if c.cfg.Source != "" {
			fmt.Printf("# loaded from %s\n", c.cfg.Source)
		}
		if err := c.cfg.WriteYAML(os.Stdout); err != nil {
			fatal(err)
		}
	}
}
