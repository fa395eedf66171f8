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

// Package dimacs reads the DIMACS CNF text format into a cnf.Store: a
// "p cnf <variables> <clauses>" problem line
// followed by whitespace-separated signed integer literals, each
// clause terminated by a 0. Variable numbers are 1-based in the file
// and negative means negated; both are translated to the store's
// 0-based variable ids and literal_t encoding on the way in.
package dimacs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/boolalg/bal/cnf"
)

// Open opens path for DIMACS reading, transparently decompressing it
// if the name ends in ".gz" — SAT-competition corpora are routinely
// distributed gzip-compressed. The caller must Close the result.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dimacs: open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("dimacs: open gzip %s: %w", path, err)
	}
	return &gzipFile{zr: zr, f: f}, nil
}

type gzipFile struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipFile) Close() error {
	err := g.zr.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Load reads a DIMACS CNF stream from r, raising s's variable
// watermark to the problem line's declared count and calling
// s.AppendClause for every clause, in file order. It returns the
// number of 0-terminated clauses read, however many lines each spans
// (including any the store silently discarded as tautologies).
func Load(s *cnf.Store, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var pending []uint32
	var clauseCount int
	sawHeader := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == 'p' {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "cnf" {
				return clauseCount, fmt.Errorf("dimacs: malformed problem line %q", line)
			}
			nvars, err := strconv.Atoi(fields[2])
			if err != nil {
				return clauseCount, fmt.Errorf("dimacs: problem line variable count: %w", err)
			}
			s.ResetVariables(uint32(nvars))
			sawHeader = true
			continue
		}
		if !sawHeader {
			return clauseCount, errors.New("dimacs: clause data precedes problem line")
		}

		for _, field := range strings.Fields(line) {
			v, err := strconv.Atoi(field)
			if err != nil {
				return clauseCount, fmt.Errorf("dimacs: literal %q: %w", field, err)
			}
			if v == 0 {
				if len(pending) > 0 {
					s.AppendClause(pending)
					clauseCount++
					pending = pending[:0]
				}
				continue
			}
			negated := v < 0
			if negated {
				v = -v
			}
			pending = append(pending, uint32(cnf.NewLiteral(uint32(v-1), negated)))
		}
	}
	if err := scanner.Err(); err != nil {
		return clauseCount, fmt.Errorf("dimacs: read: %w", err)
	}
	if len(pending) > 0 {
		return clauseCount, errors.New("dimacs: trailing clause missing terminating 0")
	}
	if !sawHeader {
		return clauseCount, errors.New("dimacs: missing problem line")
	}
	return clauseCount, nil
}
