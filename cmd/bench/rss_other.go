//go:build !unix

package main

// getMaxRSS is unavailable off unix platforms.
func getMaxRSS() uint64 { return 0 }
