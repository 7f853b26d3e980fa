// Package policy defines the retry policy applied to a task's execute phase
// and an optional context-carried default so that a whole run can opt into
// retries without configuring every task individually.
package policy
