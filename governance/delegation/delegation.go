// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package delegation models the per-chamber delegation graph.
package delegation

import (
	"errors"
	"sort"
)

var (
	ErrSelfDelegation = errors.New("cannot delegate to self")
	ErrCycle          = errors.New("delegation would create a cycle")
)

// Graph maps a delegator address to its delegatee within one chamber.
// Each delegator has at most one outgoing edge.
type Graph map[string]string

// Validate checks that adding or replacing the edge delegator -> delegatee
// keeps the graph acyclic
func (g Graph) Validate(delegator, delegatee string) error {
	if delegator == delegatee {
		return ErrSelfDelegation
	}
	if g.WouldCycle(delegator, delegatee) {
		return ErrCycle
	}
	return nil
}

// WouldCycle walks the chain starting at delegatee over the graph as it
// would look with the new edge in place. The walk is bounded by a visited
// set so a pre-existing loop elsewhere cannot spin forever.
func (g Graph) WouldCycle(delegator, delegatee string) bool {
	visited := make(map[string]struct{}, len(g))
	cur := delegatee
	for {
		if cur == delegator {
			return true
		}
		if _, ok := visited[cur]; ok {
			return false
		}
		visited[cur] = struct{}{}
		next, ok := g[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// Weights returns the number of direct delegators for each delegatee.
// Delegators present in directVoters cast their own vote and do not add
// weight to anyone. Weight is not transitive.
func (g Graph) Weights(directVoters map[string]struct{}) map[string]uint64 {
	ret := make(map[string]uint64)
	for delegator, delegatee := range g {
		if _, voted := directVoters[delegator]; voted {
			continue
		}
		ret[delegatee]++
	}
	return ret
}

// Delegators returns the sorted direct delegators of an address
func (g Graph) Delegators(delegatee string) []string {
	var ret []string
	for delegator, target := range g {
		if target == delegatee {
			ret = append(ret, delegator)
		}
	}
	sort.Strings(ret)
	return ret
}
