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
	"os"

	"github.com/urfave/cli/v2"
)

var (
	homeFlag = cli.StringFlag{
		Name:  "home",
		Usage: "the home directory of the node, relative database paths are resolved against it",
		Value: ".",
	}
	cpuProfilingFlag = cli.StringFlag{
		Name:  "cpu-profile",
		Usage: "enable the recording of a CPU profile",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "Node Database Toolbox",
		HelpName:  "database",
		Usage:     "A set of utilities to maintain the databases of a node",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags: []cli.Flag{
			&homeFlag,
			&cpuProfilingFlag,
		},
		Before: func(ctx *cli.Context) error {
			if target := ctx.String(cpuProfilingFlag.Name); target != "" {
				return startCpuProfile(target)
			}
			return nil
		},
		After: func(ctx *cli.Context) error {
			if ctx.String(cpuProfilingFlag.Name) != "" {
				stopCpuProfile()
			}
			return nil
		},
		Commands: []*cli.Command{
			&changeDbKindCommand,
			&pourDbCommand,
			&deleteColumnCommand,
			&dropColumnsCommand,
		},
	}
}
