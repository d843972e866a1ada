// Package retry provides exponential backoff with jitter for device-side
// I/O retries.
//
// Device tasks own their failures: a driver whose bus transaction fails
// retries with a Backoff, logs, or degrades, and never lets the error reach
// the exchange engine.
//
// # Strategy
//
// With the default configuration the delays are:
//
//  1. Initial delay: 100 milliseconds
//  2. Exponential increase: 200ms, 400ms, 800ms, ...
//  3. Maximum delay: 10 seconds
//  4. Continue at the maximum until successful
//  5. Reset to the initial delay after a success
//
// # Jitter
//
// Up to 25% random jitter is added to every delay so that drivers sharing
// one bus do not retry in lock step.
package retry
