// Package session manages the processing graphs of live audio sources.
//
// A Manager owns one Session per source. Each session opens the source's
// Device, restores the source's persisted settings, and runs an audio loop
// that reads a block, processes it through the session's effect chain and
// writes it back. Settings updates arrive on the control timeline and reach
// the audio loop only at block boundaries.
package session
