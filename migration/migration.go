// Copyright 2020 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package migration is the hook a snapshot load runs a pier's on-disk
// format through before the rest of the core ever sees it, in the
// shape of the teacher's core/state/pruner entrypoint: a single
// top-level function taking a pier path and doing its own I/O rather
// than something wired through persist.Manager's normal call path.
//
// %cram and %meld (spec.md §9's open question on their effects) are
// exactly the kind of operation this hook exists for, but neither is
// implemented: there is nothing yet to migrate between, since this
// core has shipped only snapshot version 1.
package migration

import "github.com/urbit-go/serf/internal/log"

// Hook runs any migration a pier at path needs before Manager.Load
// opens it. It is a no-op today — version 1 is the only snapshot
// format this core has ever written — kept as an explicit extension
// point the way pruner.Prune is a standalone step ahead of normal
// trie access rather than folded into the state package itself.
func Hook(path string, logger *log.Logger) error {
	logger.Debug("migration hook checked, nothing to do", "pier", path)
	return nil
}
