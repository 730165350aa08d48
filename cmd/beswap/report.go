package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/samcharles93/beswap/pkg/checkpoint"
)

func checkReportFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown report format %q (want text or json)", format)
	}
}

type jsonReport struct {
	*checkpoint.Report
	ElapsedMS float64 `json:"elapsed_ms"`
}

func writeReport(w io.Writer, format string, rep *checkpoint.Report, elapsed time.Duration) error {
	ms := float64(elapsed) / float64(time.Millisecond)
	if format == "json" {
		return writeJSON(w, jsonReport{Report: rep, ElapsedMS: ms})
	}
	_, err := fmt.Fprintf(w, "converted: %fms\n", ms)
	return err
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
