// Package service orchestrates the application's use cases on top of the
// store layer: user accounts, knowledge structure management, and the
// question-by-question life of an assessment. Services own transaction
// boundaries; stores are handed transaction-bound copies via WithTx.
package service
