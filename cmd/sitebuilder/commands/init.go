package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing settings file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g, root.Settings, i.Force)
}

// RunInit writes example settings to path and creates the directories they
// name.
func RunInit(g *Global, path string, force bool) error {
	out := g.out()
	_, _ = fmt.Fprintf(out, "Writing settings to %s\n", path)
	if err := config.WriteExample(path, force); err != nil {
		return err
	}
	if _, err := loadSettings(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Initialized site")
	return nil
}
