// Package signal generates deterministic test and background signals:
// sines, white/pink/brown noise and the shared noise-bed cache used by the
// output mixer.
package signal
