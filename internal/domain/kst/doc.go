// Package kst implements the combinatorial core of Knowledge Space Theory:
// domains, knowledge states, state families, and the structures built from
// them (knowledge structures, knowledge spaces, learning spaces).
//
// States are bitsets over an indexed domain, so predicates like union
// closure, well-gradedness, and the antimatroid axiom run on word operations
// rather than hash-set arithmetic. All types are immutable after
// construction; derivations (discriminative reduction, span, base, surmise
// relation) return new values.
package kst
