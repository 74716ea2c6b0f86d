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
	"fmt"

	"github.com/Fantom-foundation/memtrie/go/backend/db"
	"github.com/urfave/cli/v2"
)

// retainedColumns are the columns needed to operate on the state only.
var retainedColumns = map[db.DBCol]bool{
	db.DbVersion:         true,
	db.Misc:              true,
	db.State:             true,
	db.FlatState:         true,
	db.EpochInfo:         true,
	db.FlatStorageStatus: true,
	db.ChunkExtra:        true,
}

var dropColumnsCommand = cli.Command{
	Action: dropColumns,
	Name:   "drop-columns",
	Usage:  "deletes all columns not required to operate on the state from all stores of the node",
}

func dropColumns(ctx *cli.Context) error {
	return runDropColumns(ctx.String(homeFlag.Name))
}

// unwantedColumns lists all columns that are not retained.
func unwantedColumns() []db.DBCol {
	var res []db.DBCol
	for _, col := range db.AllColumns() {
		if !retainedColumns[col] {
			res = append(res, col)
		}
	}
	return res
}

func runDropColumns(home string) error {
	cfg, err := loadConfig(home)
	if err != nil {
		return err
	}
	cols := unwantedColumns()
	if err := db.ClearColumns(home, cfg.Archive, cfg.Store, cfg.ColdStore, cols); err != nil {
		return fmt.Errorf("failed deleting unwanted columns: %w", err)
	}
	NewLog().Printf("Deleted columns %v", cols)
	return nil
}
