//go:build race

package opt

// Race_ reports whether the binary was built with -race.
// Stress tests scale their loop counts down when it is set.
const Race_ = true
