package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/beswap/internal/fsio"
	"github.com/samcharles93/beswap/internal/logger"
	"github.com/samcharles93/beswap/pkg/checkpoint"
)

func convertAction(f *appFlags, stdout io.Writer) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return errors.New(usageLine)
		}
		srcPath, dstPath := c.Args().Get(0), c.Args().Get(1)

		order, err := fsio.ParseOrder(f.from)
		if err != nil {
			return err
		}
		if err := checkReportFormat(f.report); err != nil {
			return err
		}

		log := logger.FromContext(ctx)
		start := time.Now()
		rep, err := convertFile(srcPath, dstPath, checkpoint.Options{SourceOrder: order, Logger: log})
		elapsed := time.Since(start)
		if err != nil {
			return err
		}

		log.Info("checkpoint converted",
			"run", rep.ID,
			"source", srcPath,
			"destination", dstPath,
			"to", rep.TargetOrder,
			"bytes", rep.BytesWritten,
			"peak_buffer", rep.PeakBuffer,
			"elapsed", elapsed,
		)
		return writeReport(stdout, f.report, rep, elapsed)
	}
}

// convertFile opens both files before touching the header, so an unusable
// destination fails without reading the source.
func convertFile(srcPath, dstPath string, opts checkpoint.Options) (*checkpoint.Report, error) {
	in, err := fsio.OpenSource(srcPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	out, err := fsio.CreateDestination(dstPath)
	if err != nil {
		return nil, err
	}

	rep, err := checkpoint.Convert(in, out, opts)
	closeErr := out.Close()
	if err != nil {
		return rep, fmt.Errorf("error: converting %s: %w", srcPath, err)
	}
	if closeErr != nil {
		return rep, fmt.Errorf("error: closing %s: %w", dstPath, closeErr)
	}
	return rep, nil
}
