// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codello.dev/pkcore/bigint"
	"codello.dev/pkcore/internal/logging"
	"codello.dev/pkcore/modular"
)

func (a *app) newModExpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modexp BASE EXP MOD",
		Short: "Compute BASE^EXP mod MOD",
		Long: `Modexp computes a modular power using Barrett reduction and fixed
window exponentiation. Numbers are decimal or hexadecimal with a 0x prefix.
The window size is chosen automatically unless --window is set.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args)
			if err != nil {
				return err
			}
			r, err := modular.NewReducer(nums[2])
			if err != nil {
				return err
			}
			x, err := modular.NewFixedWindowExp(r, 0)
			if err != nil {
				return err
			}
			if w := a.cfg.Exp.Window; w != 0 {
				if err = x.SetWindowBits(w); err != nil {
					return fmt.Errorf("window %d: %w", w, err)
				}
			}
			if err = x.SetExponent(nums[1]); err != nil {
				return err
			}
			if err = x.SetBase(nums[0]); err != nil {
				return err
			}
			logging.Debugf("exponent of %d bits, window of %d bits", nums[1].BitLen(), x.WindowBits())
			result, err := x.Execute()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().Int("window", 0, fmt.Sprintf("window size in bits (1-%d, 0 for automatic)", modular.MaxWindowBits))
	return cmd
}

func (a *app) newReduceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reduce X MOD",
		Short: "Compute X mod MOD using Barrett reduction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parseInts(args)
			if err != nil {
				return err
			}
			r, err := modular.NewReducer(nums[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Reduce(nums[0]))
			return nil
		},
	}
}

// parseInts parses decimal or 0x-prefixed hexadecimal numbers.
func parseInts(args []string) ([]*bigint.Int, error) {
	nums := make([]*bigint.Int, len(args))
	for i, s := range args {
		base := 10
		if t := strings.TrimLeft(s, "+-"); strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
			base = 16
		}
		z, ok := new(bigint.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		nums[i] = z
	}
	return nums, nil
}
