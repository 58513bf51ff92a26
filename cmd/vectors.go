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
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	k8syaml "sigs.k8s.io/yaml"

	"github.com/notapipeline/scryptkdf/pkg/crypto"
	"github.com/notapipeline/scryptkdf/pkg/types"
)

var errVectorMismatch = errors.New("one or more test vectors did not match")

var vectorsFlags types.VectorsCmd = types.VectorsCmd{}

// runVectors is a variable so tests can avoid the full cost of every vector
var runVectors func() []crypto.VectorResult = crypto.RunVectors

type vectorRecord struct {
	Options  types.Options `json:"options"`
	Salt     string        `json:"salt"`
	Secret   string        `json:"secret"`
	Key      string        `json:"key"`
	Expected string        `json:"expected"`
	Match    bool          `json:"match"`
	Error    string        `json:"error,omitempty"`
}

var vectorsCmd = &cobra.Command{
	Use:   "vectors",
	Short: "Derive the built in test vectors",
	Long: `Derive the built in test vectors

Every vector is derived and reported, whether it matches its expected key or
not. The command exits non-zero when any vector fails to match.

Output can be one of text, table, json or yaml.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := printVectors(cmd.OutOrStdout(), vectorsFlags.Output); err != nil {
			fatal("%s", err)
		}
	},
}

func init() {
	vectorsCmd.Flags().StringVarP(&vectorsFlags.Output, "output", "o", "text", "output format: text, table, json or yaml")
	rootCmd.AddCommand(vectorsCmd)
}

func printVectors(w io.Writer, format string) (err error) {
	var render func(io.Writer, []vectorRecord) error
	switch format {
	case "", "text":
		render = renderText
	case "table":
		render = renderTable
	case "json":
		render = renderJson
	case "yaml":
		render = renderYaml
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	var (
		results  []crypto.VectorResult = runVectors()
		records  []vectorRecord        = make([]vectorRecord, 0, len(results))
		mismatch bool
	)
	for _, result := range results {
		var record vectorRecord = vectorRecord{
			Options:  result.Vector.Opts,
			Salt:     string(result.Vector.Salt),
			Secret:   string(result.Vector.Secret),
			Key:      hex.EncodeToString(result.Computed),
			Expected: hex.EncodeToString(result.Vector.Expected),
			Match:    result.Match(),
		}
		if result.Err != nil {
			record.Error = result.Err.Error()
		}
		mismatch = mismatch || !record.Match
		records = append(records, record)
	}

	if err = render(w, records); err != nil {
		return err
	}
	if mismatch {
		return errVectorMismatch
	}
	return nil
}

func status(r vectorRecord) string {
	switch {
	case r.Error != "":
		return "ERROR: " + r.Error
	case r.Match:
		return "OK"
	}
	return "MISMATCH"
}

func renderText(w io.Writer, records []vectorRecord) error {
	fmt.Fprintf(w, "Printing test vectors...\n\n")
	for i, r := range records {
		fmt.Fprintf(w, "Test vector %d: %s\n", i+1, r.Options)
		fmt.Fprintf(w, "    salt:     %q\n", r.Salt)
		fmt.Fprintf(w, "    secret:   %q\n", r.Secret)
		fmt.Fprintf(w, "    key:      %s\n", r.Key)
		if !r.Match {
			fmt.Fprintf(w, "    expected: %s\n", r.Expected)
		}
		fmt.Fprintf(w, "    status:   %s\n\n", status(r))
	}
	return nil
}

func renderTable(w io.Writer, records []vectorRecord) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Settings", "Salt", "Secret", "Key", "Status"})
	for i, r := range records {
		t.AppendRow(table.Row{i + 1, r.Options.String(), fmt.Sprintf("%q", r.Salt), fmt.Sprintf("%q", r.Secret), r.Key, status(r)})
	}
	t.Render()
	return nil
}

func renderJson(w io.Writer, records []vectorRecord) error {
	formatter := prettyjson.Formatter{
		DisabledColor:   color.NoColor,
		Indent:          4,
		Newline:         "\n",
		StringMaxLength: 0,
		KeyColor:        color.New(color.FgBlue, color.Bold),
		StringColor:     color.New(color.FgGreen, color.Bold),
		BoolColor:       color.New(color.FgYellow, color.Bold),
		NumberColor:     color.New(color.FgCyan, color.Bold),
		NullColor:       color.New(color.FgBlack, color.Bold),
	}
	b, err := formatter.Marshal(records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func renderYaml(w io.Writer, records []vectorRecord) error {
	b, err := k8syaml.Marshal(records)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(b))
	return nil
}
