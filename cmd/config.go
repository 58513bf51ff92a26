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
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/notapipeline/scryptkdf/pkg/config"
)

var saveConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration

Settings are read from the config file, then SKDF_ prefixed environment
variables, then any flags given on the command line. Use --save to keep the
result as the new config file.

	scryptkdf config -n 16 -i 500 --save`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			c   *config.Config
			err error
		)
		if c, err = loadConfig(cmd); err != nil {
			fatal("%s", err)
			return
		}
		if err = showConfig(cmd.OutOrStdout(), c, saveConfig); err != nil {
			fatal("%s", err)
		}
	},
}

func init() {
	configCmd.Flags().BoolVar(&saveConfig, "save", false, "write the effective configuration to the config file")
	rootCmd.AddCommand(configCmd)
}

func showConfig(w io.Writer, c *config.Config, save bool) (err error) {
	if err = c.Options.Validate(); err != nil {
		return err
	}

	if save {
		if err = c.Save(); err != nil {
			return fmt.Errorf("unable to save config: %w", err)
		}
		log.Printf("Config written to %s", config.ConfigPath())
	}

	var b []byte
	if b, err = yaml.Marshal(c); err != nil {
		return err
	}
	fmt.Fprint(w, string(b))
	return nil
}
