package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/zoobzio/chainz"
)

// readRecords decodes a JSON array of records, or one JSON value per line
// (JSON Lines). "-" reads standard input.
func readRecords(path string, stdin io.Reader) ([]chainz.Record, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return decodeRecords(r)
}

func decodeRecords(r io.Reader) ([]chainz.Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if first == '[' {
		var records []chainz.Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode input array: %w", err)
		}
		return records, nil
	}

	var records []chainz.Record
	dec := json.NewDecoder(br)
	for {
		var rec chainz.Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
