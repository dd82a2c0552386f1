// Package assess implements the Markov assessment procedure over
// probabilistic knowledge structures: a likelihood distribution on states,
// the half-split questioning rule, and the multiplicative Bayesian updating
// rule with careless-error and lucky-guess parameters. The procedure
// converges when a single state accumulates enough likelihood mass.
package assess
