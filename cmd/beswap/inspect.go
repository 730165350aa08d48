package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/beswap/internal/fsio"
	"github.com/samcharles93/beswap/pkg/checkpoint"
)

type inspectResult struct {
	Path         string               `json:"path"`
	Order        string               `json:"order"`
	Header       checkpoint.Header    `json:"header"`
	Sections     []checkpoint.Section `json:"sections"`
	ExpectedSize int64                `json:"expected_size"`
	FileSize     int64                `json:"file_size"`
}

func inspectCmd(f *appFlags, stdout io.Writer) *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header and tensor layout of a checkpoint",
		ArgsUsage: "<checkpoint_file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &asJSON},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errors.New("Usage: beswap inspect <checkpoint_file>")
			}
			order, err := fsio.ParseOrder(f.from)
			if err != nil {
				return err
			}

			res, err := inspectFile(c.Args().First(), order)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(stdout, res)
			}
			printInspect(stdout, res)
			return nil
		},
	}
}

func inspectFile(path string, order binary.ByteOrder) (*inspectResult, error) {
	in, err := fsio.OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	st, err := in.Stat()
	if err != nil {
		return nil, err
	}
	h, err := checkpoint.ReadHeader(in, order)
	if err != nil {
		return nil, err
	}
	sections, err := checkpoint.Plan(h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w\n%s", path, err, h)
	}
	return &inspectResult{
		Path:         path,
		Order:        checkpoint.OrderName(order),
		Header:       h,
		Sections:     sections,
		ExpectedSize: checkpoint.FileSize(sections),
		FileSize:     st.Size(),
	}, nil
}

func printInspect(w io.Writer, res *inspectResult) {
	_, _ = fmt.Fprintf(w, "Checkpoint: %s (%s-endian)\n", res.Path, res.Order)
	_, _ = fmt.Fprint(w, res.Header.String())
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TENSOR\tDTYPE\tELEMENTS\tOFFSET\tBYTES")
	for _, s := range res.Sections {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", s.Name, s.DType, s.Elements, s.Offset, s.Bytes)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintf(w, "\nexpected size: %d bytes\nfile size:     %d bytes\n", res.ExpectedSize, res.FileSize)
	switch {
	case res.FileSize < res.ExpectedSize:
		_, _ = fmt.Fprintln(w, "warning: file is truncated")
	case res.FileSize > res.ExpectedSize:
		_, _ = fmt.Fprintln(w, "note: file has data after the last tensor")
	}
}
