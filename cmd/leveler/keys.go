package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cwbudde/algo-leveler/dsp/effectchain"
)

type keysCmd struct{}

func (c *keysCmd) Run(env *runEnv) error {
	defaults := effectchain.ToMap(effectchain.DefaultSettings())

	tw := tabwriter.NewWriter(env.stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Key\tDefault\n---\t-------\n"); err != nil {
		return err
	}

	for _, k := range effectchain.Keys() {
		if _, err := fmt.Fprintf(tw, "%s\t%v\n", k, defaults[k]); err != nil {
			return err
		}
	}

	return tw.Flush()
}
