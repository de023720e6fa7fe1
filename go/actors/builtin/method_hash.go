// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package builtin

import (
	"encoding/binary"
	"fmt"
	"regexp"

	"github.com/Fantom-foundation/Actors/go/evm"
	"golang.org/x/crypto/blake2b"
)

// MethodNum identifies a method of an actor.
type MethodNum uint64

const ErrInvalidMethodName = evm.ConstError("invalid method name")

var methodNamePattern = regexp.MustCompile(`^[A-Z_][a-zA-Z0-9_]*$`)

// firstExportedMethod is the smallest number assigned to exported methods.
// Smaller numbers are reserved for methods only callable by builtin actors.
const firstExportedMethod = 1 << 24

// GenerateMethodNum derives the number of an exported method from its name
// following FRC-42: the name is hashed with BLAKE2b-512 and the first
// big-endian 4-byte chunk of the digest not below 2^24 is the method number.
func GenerateMethodNum(name string) (MethodNum, error) {
	if !methodNamePattern.MatchString(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMethodName, name)
	}
	digest := blake2b.Sum512([]byte("1|" + name))
	for i := 0; i+4 <= len(digest); i += 4 {
		if chunk := binary.BigEndian.Uint32(digest[i:]); chunk >= firstExportedMethod {
			return MethodNum(chunk), nil
		}
	}
	return 0, fmt.Errorf("%w: no suitable hash chunk for %q", ErrInvalidMethodName, name)
}

// MethodHash is like GenerateMethodNum but panics on invalid names. It is
// intended for method tables built from constant names.
func MethodHash(name string) MethodNum {
	num, err := GenerateMethodNum(name)
	if err != nil {
		panic(err)
	}
	return num
}
