// Package demorand produces repeatable pseudo-random demo values from string
// seeds. The same URL always yields the same numbers, so repeated analyses
// and tests are stable without any persisted state. Not cryptographic.
package demorand

// fnv1a hashes a string with 64-bit FNV-1a.
func fnv1a(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// splitmix64 is a single step of the SplitMix64 generator. It is portable
// across platforms, unlike float-based tricks such as fract(sin(seed)*1e4).
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Int returns a deterministic integer in [min, max] inclusive for the given
// seed. The range is mixed into the stream, so the same seed queried at
// different ranges yields different, but individually stable, values.
// Degenerate inputs are clamped: an empty seed is valid, and an inverted
// range collapses to min.
func Int(seed string, min, max int) int {
	if max <= min {
		return min
	}
	h := splitmix64(fnv1a(seed) ^ uint64(min)<<32 ^ uint64(max))
	span := uint64(max - min + 1)
	return min + int(h%span)
}

// Bool reports whether the seed's [0,100] draw exceeds the threshold.
// Visibility flags throughout the metric generators use threshold 60.
func Bool(seed string, threshold int) bool {
	return Int(seed, 0, 100) > threshold
}

// Pick returns a deterministic selection of n items from the candidates,
// in a seed-dependent rotation. Returns fewer when candidates are scarce.
func Pick(seed string, candidates []string, n int) []string {
	if len(candidates) == 0 || n <= 0 {
		return nil
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	start := Int(seed, 0, len(candidates)-1)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, candidates[(start+i)%len(candidates)])
	}
	return out
}
