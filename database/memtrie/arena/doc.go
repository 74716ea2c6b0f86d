// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package arena provides the memory management layer of the in-memory trie.
//
// Trie nodes are stored as byte ranges inside arenas and reference each other
// through positions (see Pos) instead of Go pointers. Three arena kinds exist:
//
//   - STArena: a single-owner, growable arena used while a trie version is
//     being built,
//   - FrozenArena: an immutable view on a finished STArena that can be cloned
//     and shared by any number of goroutines,
//   - HybridArena: a fork extending a frozen base with private allocations.
//     Positions below the base's chunk count resolve into the base, all others
//     into the fork's own delta memory.
//
// Arena names label the exported allocation gauges. The gauges of a name
// are removed once every arena using it has been frozen or released.
//
// Violations of the addressing or mutation rules are programming errors and
// cause panics carrying ErrOutOfBounds, ErrIllegalMutation, ErrInvalidAllocation
// or ErrArenaConsumed.
package arena
