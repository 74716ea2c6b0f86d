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

var newKindFlag = cli.StringFlag{
	Name:     "new-kind",
	Usage:    "the kind to record in the selected store (RPC, Archive, Hot or Cold)",
	Required: true,
}

// changeDbKindCommand overwrites the kind recorded in a store of the node.
// This is a workaround for nodes whose configuration was modified.
var changeDbKindCommand = cli.Command{
	Name:  "change-db-kind",
	Usage: "changes the kind recorded in the hot or cold store of the node",
	Flags: []cli.Flag{&newKindFlag},
	Subcommands: []*cli.Command{
		{
			Name:   "change-hot",
			Usage:  "changes the kind of the hot store",
			Action: changeHotDbKind,
		},
		{
			Name:   "change-cold",
			Usage:  "changes the kind of the cold store",
			Action: changeColdDbKind,
		},
	},
}

func changeHotDbKind(ctx *cli.Context) error {
	return changeDbKind(ctx, db.Hot)
}

func changeColdDbKind(ctx *cli.Context) error {
	return changeDbKind(ctx, db.Cold)
}

func changeDbKind(ctx *cli.Context, temperature db.Temperature) error {
	newKind, err := db.ParseDbKind(ctx.String(newKindFlag.Name))
	if err != nil {
		return err
	}
	return runChangeDbKind(ctx.String(homeFlag.Name), temperature, newKind)
}

func runChangeDbKind(home string, temperature db.Temperature, newKind db.DbKind) (err error) {
	cfg, err := loadConfig(home)
	if err != nil {
		return err
	}
	storage, err := cfg.opener(home).WithMode(db.ReadWriteExisting).Open()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, storage.Close())
	}()

	store := storage.GetHotStore()
	if temperature == db.Cold {
		if store, err = storage.GetColdStore(); err != nil {
			return err
		}
	}
	if err := store.SetDbKind(newKind); err != nil {
		return fmt.Errorf("failed to change kind of %v store: %w", temperature, err)
	}
	NewLog().Printf("Kind of %v store changed to %v", temperature, newKind)
	return nil
}
