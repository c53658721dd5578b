// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/pem"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codello.dev/pkcore/asn1/ber"
	"codello.dev/pkcore/internal/logging"
)

// block is a single encoded value read from an input. Type holds the PEM
// type or is empty for binary input.
type block struct {
	Name string
	Type string
	Data []byte
}

// readBlocks reads the named files, or standard input if names is empty. PEM
// input may contain several blocks. Anything else is taken as binary data.
func readBlocks(cmd *cobra.Command, names []string) ([]block, error) {
	if len(names) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("could not read standard input: %w", err)
		}
		return splitBlocks("<stdin>", data), nil
	}
	var blocks []block
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, splitBlocks(name, data)...)
	}
	return blocks, nil
}

func splitBlocks(name string, data []byte) []block {
	var blocks []block
	rest := data
	for {
		var p *pem.Block
		p, rest = pem.Decode(rest)
		if p == nil {
			break
		}
		blocks = append(blocks, block{Name: name, Type: p.Type, Data: p.Bytes})
	}
	if len(blocks) == 0 {
		logging.Debugf("%s: no PEM data, reading %d bytes as binary", name, len(data))
		return []block{{Name: name, Data: data}}
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		logging.Warnf("%s: ignoring %d bytes after the last PEM block", name, len(rest))
	}
	return blocks
}

// newDecoder returns a decoder for b honoring the strict setting.
func (a *app) newDecoder(b block) *ber.Decoder {
	d := ber.NewDecoder(b.Data)
	d.SetStrict(a.cfg.Decode.Strict)
	return d
}
