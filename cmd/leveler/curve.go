package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cwbudde/algo-leveler/dsp/effectchain"
)

type curveCmd struct {
	settingsFlags

	Rate float64 `default:"48000" help:"Sample rate in Hz."`
	Tone float64 `default:"1000" help:"Test tone frequency in Hz."`
	From float64 `default:"-60" help:"Lowest input peak level in dBFS."`
	To   float64 `default:"0" help:"Highest input peak level in dBFS."`
	Step float64 `default:"3" help:"Level step in dB."`
}

func (c *curveCmd) Run(env *runEnv) error {
	s, err := c.settings(effectchain.DefaultSettings(), env.log)
	if err != nil {
		return err
	}

	cond := effectchain.Conditions{SampleRate: c.Rate}
	levels := effectchain.ScanLevels(c.From, c.To, c.Step)
	if len(levels) == 0 {
		return fmt.Errorf("empty level range %g..%g step %g", c.From, c.To, c.Step)
	}

	fmt.Fprintln(env.stdout, titleStyle.Render(effectchain.Plan(s, cond).String()))

	tw := tabwriter.NewWriter(env.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "In [dBFS]\tOut [dBFS]\tGain [dB]\n---------\t----------\t---------\n")

	for _, in := range levels {
		out, err := effectchain.TransferDB(s, cond, in, c.Tone)
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\n", in, out, out-in)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	inv, err := effectchain.CheckMonotonic(s, cond, c.Tone, c.From, c.To, c.Step)
	if err != nil {
		return err
	}

	for _, v := range inv {
		fmt.Fprintf(env.stdout, "%s %.1f dBFS -> %.2f, %.1f dBFS -> %.2f\n",
			errorStyle.Render("Inversion:"), v.InputDB, v.OutputDB, v.NextInputDB, v.NextOutputDB)
	}

	fmt.Fprintf(env.stdout, "Inversions: %d\n", len(inv))

	return nil
}
