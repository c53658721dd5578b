// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pkcore inspects BER encoded data and public keys and performs
// modular arithmetic with the algorithms of this module.
//
// Usage:
//
//	pkcore dump [file...]
//	pkcore key [file]
//	pkcore modexp BASE EXP MOD
//	pkcore reduce X MOD
//	pkcore config init
//
// Settings are read from pkcore.yaml, PKCORE_* environment variables and
// flags, in order of increasing precedence.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"codello.dev/pkcore/internal/config"
	"codello.dev/pkcore/internal/logging"
)

var version = "dev" // set by the linker

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

// app holds the state shared by all subcommands.
type app struct {
	cfgFile string
	cfg     config.Config
}

// newRootCmd creates the root command with all subcommands. Every call
// returns an independent command tree.
func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}
	cmd := &cobra.Command{
		Use:   "pkcore",
		Short: "Inspect ASN.1 data and public keys",
		Long: `pkcore decodes BER and DER encoded data, prints the contents of RSA,
DSA and ECDSA keys and signatures and evaluates modular powers using
Barrett reduction and fixed window exponentiation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd.Flags(), a.cfgFile)
			if err != nil {
				return err
			}
			logging.L.SetOutput(cmd.ErrOrStderr())
			if err = logging.SetLevel(cfg.Log.Level); err != nil {
				return err
			}
			a.cfg = cfg
			logging.Debugf("configuration: %+v", cfg)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./pkcore.yaml or the user config directory)")
	pf.String("log-level", "info", `log level ("debug", "info", "warn", "error")`)
	pf.Bool("strict", false, "require DER encoded input")

	cmd.AddCommand(a.newDumpCmd())
	cmd.AddCommand(a.newKeyCmd())
	cmd.AddCommand(a.newModExpCmd())
	cmd.AddCommand(a.newReduceCmd())
	cmd.AddCommand(a.newConfigCmd())
	return cmd
}
