// Package store holds helpers shared by the run-log backends.
package store

import (
	"encoding/json"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// RunRow is a cleaning run flattened into run-log columns.
type RunRow struct {
	ID         string
	SessionID  string
	FileName   string
	IPAddress  *netip.Addr
	UserAgent  string
	ConfigJSON []byte
	RowsBefore int
	RowsAfter  int
	Warnings   int
	Errors     int
	StartedAt  int64 // unix milliseconds
	DurationMS int64
}

// Flatten converts a run record into its run-log row.
func Flatten(rec core.RunRecord) (RunRow, error) {
	cfg, err := json.Marshal(rec.Config)
	if err != nil {
		return RunRow{}, err
	}

	r := rec.Report
	return RunRow{
		ID:         r.RunID,
		SessionID:  rec.SessionID,
		FileName:   rec.FileName,
		IPAddress:  ParseClientAddr(rec.Client.IPAddress),
		UserAgent:  rec.Client.UserAgent,
		ConfigJSON: cfg,
		RowsBefore: r.RowsBefore,
		RowsAfter:  r.RowsAfter,
		Warnings:   len(r.Warnings()),
		Errors:     len(r.Errors()),
		StartedAt:  r.StartedAt.UnixMilli(),
		DurationMS: r.Duration.Milliseconds(),
	}, nil
}

// ParseClientAddr strips a port if present. Returns nil for anything that
// is not an IP address.
func ParseClientAddr(s string) *netip.Addr {
	if s == "" {
		return nil
	}
	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}

// ColumnDef is one column of an exported table.
type ColumnDef struct {
	Name    string
	Numeric bool
}

// Columns describes the export columns of ds in order.
func Columns(ds *table.Dataset) []ColumnDef {
	cols := ds.Columns()
	out := make([]ColumnDef, len(cols))
	for i, c := range cols {
		out[i] = ColumnDef{Name: c.Name, Numeric: c.Type == table.FieldNumeric}
	}
	return out
}

// FoldUnique renames columns whose names collide case-insensitively, for
// databases that fold identifier case. The first occurrence keeps its name;
// later ones get a ".1", ".2" suffix that is free in every case.
func FoldUnique(cols []ColumnDef) []ColumnDef {
	out := make([]ColumnDef, len(cols))
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		taken[strings.ToLower(c.Name)] = true
	}

	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		out[i] = c
		key := strings.ToLower(c.Name)
		if !seen[key] {
			seen[key] = true
			continue
		}
		for n := 1; ; n++ {
			name := c.Name + "." + strconv.Itoa(n)
			if k := strings.ToLower(name); !taken[k] {
				taken[k] = true
				seen[k] = true
				out[i].Name = name
				break
			}
		}
	}
	return out
}
