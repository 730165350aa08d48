package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/beswap/internal/fsio"
	"github.com/samcharles93/beswap/internal/logger"
	"github.com/samcharles93/beswap/pkg/checkpoint"
)

func verifyCmd(f *appFlags, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that a converted checkpoint is the byte-swapped mirror of its source",
		ArgsUsage: "<checkpoint_file> <converted_file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return errors.New("Usage: beswap verify <checkpoint_file> <converted_file>")
			}
			order, err := fsio.ParseOrder(f.from)
			if err != nil {
				return err
			}

			srcPath, convPath := c.Args().Get(0), c.Args().Get(1)
			src, err := fsio.OpenSource(srcPath)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()
			conv, err := fsio.OpenSource(convPath)
			if err != nil {
				return err
			}
			defer func() { _ = conv.Close() }()

			log := logger.FromContext(ctx)
			rep, err := checkpoint.Verify(src, conv, checkpoint.Options{SourceOrder: order, Logger: log})
			if err != nil {
				return fmt.Errorf("error: verifying %s against %s: %w", convPath, srcPath, err)
			}

			log.Info("checkpoint verified", "run", rep.ID, "sections", len(rep.Sections))
			_, err = fmt.Fprintf(stdout, "verified: %d sections, %d bytes per file\n",
				len(rep.Sections), checkpoint.FileSize(rep.Sections))
			return err
		},
	}
}
