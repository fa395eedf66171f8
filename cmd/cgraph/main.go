// Copyright 2024 The BAL Authors
// This file is part of BAL.
//
// BAL is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BAL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with BAL. If not, see <http://www.gnu.org/licenses/>.

// Command cgraph reads a DIMACS CNF file into a clause store and emits
// its variable co-occurrence graph:
//
//	cgraph [-w] [--format=graphml|dot] [--config=FILE] [-v] <input.cnf> [<output>]
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
	log "github.com/erigontech/erigon-lib/log/v3"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/boolalg/bal/cnf"
	"github.com/boolalg/bal/config"
	"github.com/boolalg/bal/dimacs"
	"github.com/boolalg/bal/dot"
	"github.com/boolalg/bal/graphml"
)

var (
	weighted   bool
	format     string
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "cgraph [-w] [--format=graphml|dot] <input.cnf> [<output>]",
		Short: "Convert a DIMACS CNF file into a variable co-occurrence graph",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runConvert,
	}
	root.Flags().BoolVarP(&weighted, "weighted", "w", false, "emit edge cardinality/weight attributes")
	root.Flags().StringVar(&format, "format", "graphml", "output format: graphml or dot")
	root.Flags().StringVar(&configPath, "config", "", "optional TOML file overriding encoder defaults")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "report store memory usage on completion")

	if err := root.Execute(); err != nil {
		log.Error("cgraph: failed", "err", err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case cnf.InvariantError, cnf.TransactionStateError:
				err = fmt.Errorf("cgraph: %v", r)
			default:
				panic(r)
			}
		}
	}()

	inputPath := args[0]
	outputPath := defaultOutputPath(inputPath, format)
	if len(args) > 1 {
		outputPath = args[1]
	}

	opts := config.DefaultEncoderOptions()
	if configPath != "" {
		opts, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	in, err := dimacs.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	store := cnf.NewStore(0, 0, cnf.WithEncoderOptions(opts))
	clauses, err := dimacs.Load(store, in)
	if err != nil {
		return fmt.Errorf("cgraph: parse %s: %w", inputPath, err)
	}
	log.Info("cgraph: loaded", "input", inputPath, "clauses", clauses, "variables", store.VariablesSize())

	lock := flock.New(outputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("cgraph: lock %s: %w", outputPath, err)
	}
	if !locked {
		return fmt.Errorf("cgraph: %s is already being written by another process", outputPath)
	}
	defer lock.Unlock()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("cgraph: create %s: %w", outputPath, err)
	}
	defer out.Close()

	if err := writeGraph(out, store, format, weighted); err != nil {
		return fmt.Errorf("cgraph: write %s: %w", outputPath, err)
	}
	log.Info("cgraph: wrote", "output", outputPath, "format", format, "weighted", weighted)

	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "store memory: %v\n", datasize.ByteSize(store.MemorySize()).HumanReadable())
	}
	return nil
}

func writeGraph(out *os.File, store *cnf.Store, format string, weighted bool) error {
	switch format {
	case "graphml":
		w := &graphml.Writer{Weighted: weighted}
		return w.Write(out, store)
	case "dot":
		w := &dot.Writer{Weighted: weighted}
		return w.Write(out, store)
	default:
		return fmt.Errorf("cgraph: unknown format %q (want graphml or dot)", format)
	}
}

func defaultOutputPath(inputPath, format string) string {
	ext := ".graphml"
	if format == "dot" {
		ext = ".dot"
	}
	if i := strings.LastIndexByte(inputPath, '.'); i >= 0 {
		return inputPath[:i] + ext
	}
	return inputPath + ext
}
