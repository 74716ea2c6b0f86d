// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/memtrie/go/backend/db"
	"github.com/Fantom-foundation/memtrie/go/common/interrupt"
	"github.com/pbnjay/memory"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is the number of entries copied between checks for
// cancellation.
const cancelCheckInterval = 10_000

// progressWindow is the number of entries copied between progress reports.
const progressWindow = 1_000_000

// defaultBatchSize is the number of key and value bytes collected before
// they are written to the target database.
const defaultBatchSize = 500_000_000

var (
	sourceDbFlag = cli.StringFlag{
		Name:     "source-db",
		Usage:    "path of the database to copy from",
		Required: true,
	}
	targetDbFlag = cli.StringFlag{
		Name:     "target-db",
		Usage:    "path of the database to copy to",
		Required: true,
	}
	sourceBackendFlag = cli.StringFlag{
		Name:  "source-backend",
		Usage: "backend of the source database, defaults to the backend of the configured hot store",
	}
	targetBackendFlag = cli.StringFlag{
		Name:  "target-backend",
		Usage: "backend of the target database, defaults to the backend of the configured hot store",
	}
	numThreadsFlag = cli.IntFlag{
		Name:  "num-threads",
		Usage: "number of columns copied in parallel",
		Value: 1,
	}
	batchSizeFlag = cli.IntFlag{
		Name:  "batch-size",
		Usage: "number of bytes written to the target database in one batch",
		Value: defaultBatchSize,
	}
)

// pourDbCommand copies all columns of one database into another.
var pourDbCommand = cli.Command{
	Action: pourDb,
	Name:   "pour-db",
	Usage:  "copies the content of all columns of one database into another",
	Flags: []cli.Flag{
		&sourceDbFlag,
		&targetDbFlag,
		&sourceBackendFlag,
		&targetBackendFlag,
		&numThreadsFlag,
		&batchSizeFlag,
	},
}

type pourParams struct {
	source, target db.StoreConfig
	numThreads     int
	batchSize      int
}

func pourDb(ctx *cli.Context) error {
	home := ctx.String(homeFlag.Name)
	cfg, err := loadConfig(home)
	if err != nil {
		return err
	}
	params := pourParams{
		source:     cfg.Store,
		target:     cfg.Store,
		numThreads: ctx.Int(numThreadsFlag.Name),
		batchSize:  ctx.Int(batchSizeFlag.Name),
	}
	params.source.Path = db.ResolvePath(home, ctx.String(sourceDbFlag.Name))
	params.target.Path = db.ResolvePath(home, ctx.String(targetDbFlag.Name))
	if backend := ctx.String(sourceBackendFlag.Name); backend != "" {
		params.source.Backend = db.Backend(backend)
	}
	if backend := ctx.String(targetBackendFlag.Name); backend != "" {
		params.target.Backend = db.Backend(backend)
	}
	if !ctx.IsSet(batchSizeFlag.Name) {
		params.batchSize = limitBatchSize(params.batchSize, params.numThreads, memory.TotalMemory())
	}
	cancelable, stop := interrupt.Register(ctx.Context)
	defer stop()
	return runPourDb(cancelable, params)
}

// limitBatchSize reduces the batch size such that the batches of all
// threads together occupy at most half of the system's memory. A total
// memory of zero means the amount is unknown.
func limitBatchSize(batchSize, numThreads int, totalMemory uint64) int {
	if totalMemory == 0 || numThreads < 1 {
		return batchSize
	}
	limit := totalMemory / 2 / uint64(numThreads)
	if uint64(batchSize) > limit {
		return int(limit)
	}
	return batchSize
}

func runPourDb(ctx context.Context, params pourParams) (err error) {
	if params.numThreads < 1 {
		return fmt.Errorf("invalid number of threads: %d", params.numThreads)
	}
	if params.batchSize < 1 {
		return fmt.Errorf("invalid batch size: %d", params.batchSize)
	}

	log := NewLog()
	log.Printf("Opening source database in %s ...", params.source.Path)
	source, err := db.Open(params.source.Path, params.source, db.ReadOnly, db.Hot)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, source.Close())
	}()

	log.Printf("Opening target database in %s ...", params.target.Path)
	target, err := db.Open(params.target.Path, params.target, db.ReadWrite, db.Hot)
	if err != nil {
		return err
	}
	defer func() {
		log.Printf("Closing target database ...")
		err = errors.Join(err, target.Flush(), target.Close())
	}()

	if err := pourColumns(ctx, log, source, target, db.AllColumns(), params.numThreads, params.batchSize); err != nil {
		return err
	}
	log.Printf("All columns copied")
	return nil
}

// pourColumns copies the given columns from source to target, processing up
// to numThreads columns in parallel. The first encountered error is returned
// and stops the copying of the remaining columns.
func pourColumns(ctx context.Context, log *Log, source, target db.Database, cols []db.DBCol, numThreads, batchSize int) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(numThreads)
	for _, col := range cols {
		col := col
		group.Go(func() error {
			return pourColumn(ctx, log, source, target, col, batchSize)
		})
	}
	return group.Wait()
}

// pourColumn copies a single column. On cancellation the entries collected
// so far are written before ErrCanceled is returned.
func pourColumn(ctx context.Context, log *Log, source, target db.Database, col db.DBCol, batchSize int) error {
	if err := interrupt.Err(ctx); err != nil {
		return err
	}
	log = log.ForColumn(col)
	log.Print("started migration")
	progress := newCopyProgress(log, progressWindow)

	batch := db.NewBatchTransaction(target, batchSize)
	iter := source.Iter(col)
	defer iter.Release()
	for iter.Next() {
		key, value := iter.Key(), iter.Value()
		if err := batch.SetAndWriteIfFull(col, key, value); err != nil {
			return fmt.Errorf("failed to copy column %v: %w", col, err)
		}
		progress.Copied(len(key) + len(value))
		if progress.Entries()%cancelCheckInterval != 0 {
			continue
		}
		if err := interrupt.Err(ctx); err != nil {
			log.Printf("interrupted after %d entries, writing pending batch", progress.Entries())
			return errors.Join(err, batch.Write())
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to read column %v: %w", col, err)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to copy column %v: %w", col, err)
	}
	progress.Done()
	return nil
}
