// SPDX-FileCopyrightText: Red Hat, Inc.
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package extentmap encodes image extents for backup metadata files.
package extentmap

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/sitedata/virtnbdbackup"
)

// Format selects the extent map encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatMsgpack}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("Unsupported format %q", s)
}

// Ext returns the file name extension for the format.
func (f Format) Ext() string {
	return string(f)
}

// Write encodes all extents from res to w.
func Write(w io.Writer, f Format, res virtnbdbackup.ExtentsResult) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(collect(res)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(collect(res))
	default:
		return fmt.Errorf("Unsupported format %q", f)
	}
}

// Read decodes extents written by Write.
func Read(r io.Reader, f Format) ([]*virtnbdbackup.Extent, error) {
	var extents []*virtnbdbackup.Extent
	var err error

	switch f {
	case FormatJSON, FormatYAML:
		// JSON is valid YAML.
		err = yaml.NewDecoder(r).Decode(&extents)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&extents)
	default:
		err = fmt.Errorf("Unsupported format %q", f)
	}

	if err != nil && err != io.EOF {
		return nil, err
	}
	return extents, nil
}

func collect(res virtnbdbackup.ExtentsResult) []*virtnbdbackup.Extent {
	extents := virtnbdbackup.Collect(res)
	if extents == nil {
		extents = []*virtnbdbackup.Extent{}
	}
	return extents
}

// Write easy to read and compact JSON to writer.
//
//	[{"start": 0, "length": 4096, "data": true, "zero": false},
//	 {"start": 4096, "length": 4096, "data": false, "zero": true}]
//
// This uses much less memory and is much faster than creating a list of
// extents and marshaling the list.
func writeJSON(w io.Writer, res virtnbdbackup.ExtentsResult) error {
	first := true
	format := "{\"start\": %v, \"length\": %v, \"data\": %v, \"zero\": %v}"

	if _, err := fmt.Fprint(w, "["); err != nil {
		return err
	}

	for res.Next() {
		e := res.Value()
		if _, err := fmt.Fprintf(w, format, e.Start, e.Length, e.Data, e.Zero); err != nil {
			return err
		}

		if first {
			format = ",\n " + format
			first = false
		}
	}

	_, err := fmt.Fprint(w, "]\n")
	return err
}
