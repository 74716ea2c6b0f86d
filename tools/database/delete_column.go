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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/memtrie/go/backend/db"
	"github.com/urfave/cli/v2"
)

var (
	dbFlag = cli.StringFlag{
		Name:     "db",
		Usage:    "path of the database",
		Required: true,
	}
	columnFlag = cli.StringFlag{
		Name:     "column",
		Usage:    "name of the column to delete",
		Required: true,
	}
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "backend of the database, defaults to the backend of the configured hot store",
	}
)

// deleteColumnCommand removes all entries of a single column.
var deleteColumnCommand = cli.Command{
	Action: deleteColumn,
	Name:   "delete-column",
	Usage:  "deletes all entries of a column of a database",
	Flags: []cli.Flag{
		&dbFlag,
		&columnFlag,
		&backendFlag,
	},
}

func deleteColumn(ctx *cli.Context) error {
	col, err := db.ParseDBCol(ctx.String(columnFlag.Name))
	if err != nil {
		return err
	}
	home := ctx.String(homeFlag.Name)
	cfg, err := loadConfig(home)
	if err != nil {
		return err
	}
	config := cfg.Store
	config.Path = db.ResolvePath(home, ctx.String(dbFlag.Name))
	if backend := ctx.String(backendFlag.Name); backend != "" {
		config.Backend = db.Backend(backend)
	}
	return runDeleteColumn(config, col)
}

func runDeleteColumn(config db.StoreConfig, col db.DBCol) (err error) {
	database, err := db.Open(config.Path, config, db.ReadWrite, db.Hot)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, database.Flush(), database.Close())
	}()

	tx := db.NewTransaction()
	tx.DeleteAll(col)
	if err := database.Write(tx); err != nil {
		return fmt.Errorf("failed to delete column %v: %w", col, err)
	}
	NewLog().Printf("Deleted column %v in %s", col, config.Path)
	return nil
}
