// Copyright Fabriclab Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash computes a structural hash of the given expression.  Shared subtrees
// are hashed once, so hashing is linear in the size of the expression DAG.
// Symbolic holes hash by identity.
func Hash(e Expr) uint64 {
	memo := make(map[Expr]uint64)
	return hash(e, memo)
}

func hash(e Expr, memo map[Expr]uint64) uint64 {
	if h, ok := memo[e]; ok {
		return h
	}
	//
	var (
		digest xxhash.Digest
		h      uint64
	)
	//
	digest.Reset()
	//
	switch e := e.(type) {
	case *Lit:
		h = leafHash(&digest, "lit", e.Value.Uint64(), uint64(e.Value.Width()))
	case *Var:
		digest.WriteString("var:")
		digest.WriteString(e.Name)
		h = mix(&digest, uint64(e.W))
	case *Symbolic:
		h = leafHash(&digest, "sym", uint64(e.id), uint64(e.width))
	case *Wire:
		h = leafHash(&digest, "wire", uint64(e.index), uint64(e.width))
	case *Extract:
		digest.WriteString("extract:")
		writeU64(&digest, uint64(e.Hi), uint64(e.Lo), hash(e.Arg, memo))
		h = digest.Sum64()
	case *Concat:
		h = naryHash(&digest, "concat", e.Args, memo)
	case *ZeroExtend:
		digest.WriteString("zext:")
		writeU64(&digest, uint64(e.W), hash(e.Arg, memo))
		h = digest.Sum64()
	case *DupExtend:
		digest.WriteString("dupext:")
		writeU64(&digest, uint64(e.W), hash(e.Arg, memo))
		h = digest.Sum64()
	case *Eq:
		digest.WriteString("eq:")
		writeU64(&digest, hash(e.Lhs, memo), hash(e.Rhs, memo))
		h = digest.Sum64()
	case *And:
		h = naryHash(&digest, "and", e.Args, memo)
	case *Or:
		h = naryHash(&digest, "or", e.Args, memo)
	case *Mux:
		digest.WriteString("mux:")
		writeU64(&digest, hash(e.Sel, memo), hash(e.OnTrue, memo), hash(e.OnFalse, memo))
		h = digest.Sum64()
	case *Reg:
		digest.WriteString("reg:")
		writeU64(&digest, e.Init.Uint64(), uint64(e.Init.Width()), hash(e.Next, memo))
		h = digest.Sum64()
	case *Map:
		digest.WriteString("map:")
		//
		for i, k := range e.Keys {
			digest.WriteString(k)
			writeU64(&digest, hash(e.Vals[i], memo))
		}
		//
		h = digest.Sum64()
	case *MapRef:
		digest.WriteString("map-ref:")
		digest.WriteString(e.Key)
		h = mix(&digest, hash(e.Src, memo))
	case *List:
		h = naryHash(&digest, "list", e.Elems, memo)
	case *ListRef:
		digest.WriteString("list-ref:")
		writeU64(&digest, uint64(e.Index), hash(e.Src, memo))
		h = digest.Sum64()
	case *Instance:
		digest.WriteString("inst:")
		digest.WriteString(e.Module)
		digest.WriteString(e.Filepath)
		//
		for _, port := range e.Ports {
			digest.WriteString(port.Name)
			//
			if port.Value != nil {
				writeU64(&digest, hash(port.Value, memo))
			}
		}
		//
		for _, param := range e.Params {
			digest.WriteString(param.Name)
			writeU64(&digest, hash(param.Value, memo))
		}
		//
		h = digest.Sum64()
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
	//
	memo[e] = h
	//
	return h
}

func leafHash(digest *xxhash.Digest, tag string, values ...uint64) uint64 {
	digest.WriteString(tag)
	digest.WriteString(":")
	writeU64(digest, values...)
	//
	return digest.Sum64()
}

func naryHash(digest *xxhash.Digest, tag string, args []Expr, memo map[Expr]uint64) uint64 {
	digest.WriteString(tag)
	digest.WriteString(":")
	//
	for _, arg := range args {
		writeU64(digest, hash(arg, memo))
	}
	//
	return digest.Sum64()
}

func mix(digest *xxhash.Digest, values ...uint64) uint64 {
	writeU64(digest, values...)
	return digest.Sum64()
}

func writeU64(digest *xxhash.Digest, values ...uint64) {
	var buffer [8]byte
	//
	for _, value := range values {
		binary.LittleEndian.PutUint64(buffer[:], value)
		digest.Write(buffer[:])
	}
}
