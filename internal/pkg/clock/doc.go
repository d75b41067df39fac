// Package clock provides a tiny time abstraction.
//
// Business code depends on Clocker instead of calling time.Now directly, so
// token expiry and one-time-password windows can be driven by a Fixed clock
// in tests.
package clock
