// Package mocks holds testify mocks generated by mockery from the
// interfaces listed in .mockery.yaml. Regenerate with `mockery` from the
// module root.
package mocks
