// Copyright 2025 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package genesis

import (
	"errors"
	"fmt"

	"github.com/erigontech/starkdb/core/types"
)

var (
	ErrParentHashNotSet       = errors.New("parent hash not set")
	ErrStateRootNotSet        = errors.New("state root not set")
	ErrTimestampNotSet        = errors.New("timestamp not set")
	ErrNumberNotSet           = errors.New("block number not set")
	ErrSequencerAddressNotSet = errors.New("sequencer address not set")
	ErrGasPricesNotSet        = errors.New("L1 gas prices not set")
	ErrFeeTokenNotSet         = errors.New("fee token not set")
	ErrMissingClassHash       = errors.New("contract allocation is missing a class hash")
	ErrUnknownClassHash       = errors.New("unknown class hash")
	ErrClassParsing           = errors.New("error parsing the class artifact")
)

// UnknownClassHashError is returned when a contract references a class missing from the genesis classes.
type UnknownClassHashError struct {
	Contract  types.ContractAddress
	ClassHash types.ClassHash
}

func (e *UnknownClassHashError) Error() string {
	return fmt.Sprintf("no class found with hash %s for contract %s", e.ClassHash, e.Contract)
}

func (e *UnknownClassHashError) Is(target error) bool { return target == ErrUnknownClassHash }
