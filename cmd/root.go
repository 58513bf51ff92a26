/*
 *   Copyright 2023 Martin Proffitt <mproffitt@choclab.net>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/notapipeline/scryptkdf/pkg/config"
	"github.com/notapipeline/scryptkdf/pkg/types"
)

const appName string = "scryptkdf"

// Version is set at build time
var Version string = "0.0.0-dev"

var deriveFlags types.DeriveCmd = types.DeriveCmd{}

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     appName,
	Short:   "Iterative scrypt key derivation",
	Version: Version,
	Long: `
Iterative scrypt key derivation

Derives a key from a salt and a secret by running scrypt repeatedly, feeding
the output of every round into the next. The cost of guessing the secret
grows with the number of iterations while the memory needed by any single
round stays the same.

You will be asked for the salt and, twice, for the secret. The secret prompt
uses GPG Pinentry if available, otherwise falls back to reading from stdin.

A long derivation can be interrupted with Ctrl-C. The command to resume from
the last completed round is printed on exit, or use --checkpoint to keep it
in a file:

	scryptkdf -i 1000 --checkpoint ~/.cache/scryptkdf/chain.yaml
	scryptkdf --resume ~/.cache/scryptkdf/chain.yaml

Resuming never asks for the secret again, only the salt.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(deriveFlags.Debug, deriveFlags.Quiet)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if deriveFlags.Test {
			if err := printVectors(cmd.OutOrStdout(), "text"); err != nil {
				fatal("%s", err)
			}
			return
		}

		var (
			c   *config.Config
			err error
		)
		if c, err = loadConfig(cmd); err != nil {
			fatal("%s", err)
			return
		}

		if err = derive(cmd, c); err != nil {
			fatal("%s", err)
			return
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fatal("Error: %s", err)
	}
}

func init() {
	var d types.Options = types.DefaultOptions()

	// These are consistent across all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/scryptkdf/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&deriveFlags.Debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&deriveFlags.Quiet, "quiet", false, "disable all logging")

	rootCmd.PersistentFlags().Uint32VarP(&deriveFlags.Iterations, "iterations", "i", d.Iterations, "set the number of required iterations")
	rootCmd.PersistentFlags().Uint8VarP(&deriveFlags.LogN, "logn", "n", d.LogN, "set the log2 of the work factor")
	rootCmd.PersistentFlags().Uint32VarP(&deriveFlags.R, "blocksize", "r", d.R, "set the blocksize parameter")
	rootCmd.PersistentFlags().Uint32VarP(&deriveFlags.P, "parallel", "p", d.P, "set the parallelization parameter")
	rootCmd.PersistentFlags().IntVarP(&deriveFlags.KeySize, "keysize", "k", d.KeySize, "set the length of the derived key in bytes")
	rootCmd.PersistentFlags().StringVarP(&deriveFlags.Checkpoint, "checkpoint", "c", "", "write a resumable checkpoint to this file after every round")

	// these are for derivation only
	rootCmd.Flags().BoolVarP(&deriveFlags.Test, "test", "t", false, "print test vectors")
	rootCmd.Flags().Uint32Var(&deriveFlags.Offset, "offset", 0, "resume at this round, requires --intermediary")
	rootCmd.Flags().StringVar(&deriveFlags.Intermediary, "intermediary", "", "hex encoded output of the round before --offset")
	rootCmd.Flags().StringVar(&deriveFlags.Resume, "resume", "", "resume from a checkpoint file")
	rootCmd.MarkFlagsMutuallyExclusive("resume", "offset")
	rootCmd.MarkFlagsMutuallyExclusive("resume", "intermediary")
}

func loadConfig(cmd *cobra.Command) (c *config.Config, err error) {
	if cfgFile != "" {
		config.ConfigPath = func() string {
			return cfgFile
		}
	}

	c = config.New()
	if err = c.Load(); err != nil {
		return nil, err
	}

	c.MergeDeriveCmd(deriveFlags, cmd.Flags().Changed)
	configureLogging(c.Debug, c.Quiet)
	return c, nil
}
