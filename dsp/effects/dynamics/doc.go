// Package dynamics provides the level-control processors of a voice
// processing chain. Every processor works on interleaved multichannel
// buffers with detection linked across channels.
//
// Included processors:
//   - Compressor: soft-knee feed-forward compressor with peak envelope.
//   - MultibandCompressor: three-band compressor on Butterworth crossovers
//     with per-band makeup gain.
//   - Limiter: brick-wall limiter (20:1, hard knee, ceiling clamp), plus
//     the fixed PreLimiter variant.
//   - Gate: RMS noise gate with tick-based hold.
//   - AGC: automatic gain control with slow/normal/fast profiles.
//
// The steady-state curves [CompressDB], [LimitDB] and [AGCSteadyStateDB]
// describe what each processor converges to for a sustained input.
package dynamics
