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

// Package config holds the encoder-facing knobs cnf.Store stores and
// bounds-checks but never interprets itself: AddMaxArgs, XorMaxArgs,
// AddNaive. Semantics belong to the encoders built on top of the
// store, which are out of this module's scope.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	AddMaxArgsDefault = 3
	AddMaxArgsMin     = 2
	AddMaxArgsMax     = 6

	XorMaxArgsDefault = 3
	XorMaxArgsMin     = 2
	XorMaxArgsMax     = 10

	AddNaiveDefault = false
)

// EncoderOptions mirrors the clause encoder's three generation knobs.
// Field names match their TOML keys via struct tags so
// `cgraph --config=opts.toml` can load a subset of them.
type EncoderOptions struct {
	AddMaxArgs uint32 `toml:"add_max_args"`
	XorMaxArgs uint32 `toml:"xor_max_args"`
	AddNaive   bool   `toml:"add_naive"`
}

// DefaultEncoderOptions returns the built-in defaults.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		AddMaxArgs: AddMaxArgsDefault,
		XorMaxArgs: XorMaxArgsDefault,
		AddNaive:   AddNaiveDefault,
	}
}

// Validate bounds-checks every field. Out-of-range values are a
// caller error (bad CLI flag or config file), not a cnf.Store-level
// fatal condition.
func (o EncoderOptions) Validate() error {
	if o.AddMaxArgs < AddMaxArgsMin || o.AddMaxArgs > AddMaxArgsMax {
		return fmt.Errorf("config: add_max_args %d out of range [%d, %d]", o.AddMaxArgs, AddMaxArgsMin, AddMaxArgsMax)
	}
	if o.XorMaxArgs < XorMaxArgsMin || o.XorMaxArgs > XorMaxArgsMax {
		return fmt.Errorf("config: xor_max_args %d out of range [%d, %d]", o.XorMaxArgs, XorMaxArgsMin, XorMaxArgsMax)
	}
	return nil
}

// Load reads a TOML file and overlays it onto the documented defaults.
// Fields absent from the file keep their default value.
func Load(path string) (EncoderOptions, error) {
	opts := DefaultEncoderOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
