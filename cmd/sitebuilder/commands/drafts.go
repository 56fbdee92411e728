package commands

import (
	"fmt"
)

// DraftsCmd implements the 'drafts' command.
type DraftsCmd struct {
	Publish bool `help:"Promote every ready draft into the content directory"`
}

func (d *DraftsCmd) Run(g *Global, root *CLI) error {
	s, err := loadSettings(root.Settings)
	if err != nil {
		return err
	}
	out := g.out()
	promoter := newPromoter(s, g.logger(), newRecorder(s))

	if !d.Publish {
		ready, err := promoter.Ready()
		if err != nil {
			return err
		}
		if len(ready) == 0 {
			_, _ = fmt.Fprintln(out, "No drafts ready to publish")
			return nil
		}
		for _, dr := range ready {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", dr.Slug, dr.Path)
		}
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	slugs, err := promoter.Promote(ctx)
	for _, slug := range slugs {
		_, _ = fmt.Fprintf(out, "Published %s\n", slug)
	}
	if err != nil {
		return err
	}
	if len(slugs) == 0 {
		_, _ = fmt.Fprintln(out, "No drafts ready to publish")
	}
	return nil
}
