// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/httpvfs/lib/query"
	"github.com/bureau-foundation/httpvfs/lib/remotedb"
)

// writeJSON writes value as indented JSON. Blobs appear as base64
// strings.
func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// writeTable writes a result as aligned columns with a header row.
func writeTable(w io.Writer, result *query.Result) error {
	if len(result.Columns) == 0 {
		return nil
	}
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, len(result.Columns))
	for i, column := range result.Columns {
		headers[i] = strings.ToUpper(column)
	}
	fmt.Fprintln(writer, strings.Join(headers, "\t"))

	cells := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, value := range row {
			cells[i] = formatValue(value)
		}
		fmt.Fprintln(writer, strings.Join(cells, "\t"))
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	rowWord := "rows"
	if len(result.Rows) == 1 {
		rowWord = "row"
	}
	summary := fmt.Sprintf("(%d %s)", len(result.Rows), rowWord)
	if result.Truncated {
		summary = fmt.Sprintf("(%d %s, truncated)", len(result.Rows), rowWord)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

// formatValue renders one cell the way the sqlite3 shell's quote mode
// does for nulls and blobs, and plainly otherwise. Tabs and newlines are
// escaped so they cannot break column alignment.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strings.NewReplacer("\t", `\t`, "\n", `\n`).Replace(v)
	case []byte:
		return "x'" + hex.EncodeToString(v) + "'"
	default:
		return fmt.Sprint(v)
	}
}

func writeStatus(w io.Writer, status remotedb.Status) error {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "URL:\t%s\n", status.URL)
	fmt.Fprintf(writer, "Name:\t%s\n", status.Name)
	fmt.Fprintf(writer, "VFS:\t%s\n", status.VFS)
	fmt.Fprintf(writer, "State:\t%s\n", status.State)
	fmt.Fprintf(writer, "Size:\t%d bytes\n", status.Size)
	if status.PageSize > 0 {
		fmt.Fprintf(writer, "Page size:\t%d bytes\n", status.PageSize)
	} else {
		fmt.Fprintf(writer, "Page size:\tunresolved\n")
	}
	fmt.Fprintf(writer, "Ranges advertised:\t%t\n", status.RangesAdvertised)
	return writer.Flush()
}
