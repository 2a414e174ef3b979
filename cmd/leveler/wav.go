package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-leveler/session"
)

const wavFormatPCM = 1

// wavDevice reads PCM frames from one WAV file and writes the processed
// frames to another with the same format.
type wavDevice struct {
	in  *os.File
	dec *wav.Decoder
	out *os.File
	enc *wav.Encoder

	sampleRate float64
	channels   int
	blockSize  int
	bitDepth   int
	scale      float64

	inBuf  *audio.IntBuffer
	outBuf *audio.IntBuffer

	frames  int
	peakIn  float64
	peakOut float64
}

var _ session.Device = (*wavDevice)(nil)

func openWAV(inPath, outPath string, blockSize int) (*wavDevice, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("block size must be positive: %d", blockSize)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		_ = in.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", inPath)
	}

	bitDepth := int(dec.BitDepth)
	if dec.WavAudioFormat != wavFormatPCM || (bitDepth != 16 && bitDepth != 24 && bitDepth != 32) {
		_ = in.Close()
		return nil, fmt.Errorf("unsupported WAV format %d with %d bits: only 16, 24 or 32 bit PCM", dec.WavAudioFormat, bitDepth)
	}

	format := dec.Format()

	out, err := os.Create(outPath)
	if err != nil {
		_ = in.Close()
		return nil, err
	}

	return &wavDevice{
		in:         in,
		dec:        dec,
		out:        out,
		enc:        wav.NewEncoder(out, format.SampleRate, bitDepth, format.NumChannels, wavFormatPCM),
		sampleRate: float64(format.SampleRate),
		channels:   format.NumChannels,
		blockSize:  blockSize,
		bitDepth:   bitDepth,
		scale:      math.Ldexp(1, bitDepth-1),
		inBuf: &audio.IntBuffer{
			Format:         format,
			Data:           make([]int, blockSize*format.NumChannels),
			SourceBitDepth: bitDepth,
		},
		outBuf: &audio.IntBuffer{
			Format:         format,
			Data:           make([]int, 0, blockSize*format.NumChannels),
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// wavOpener opens source as the input file and writes to outPath.
func wavOpener(outPath string, blockSize int, opened **wavDevice) session.Opener {
	return session.OpenerFunc(func(_ context.Context, source string) (session.Device, error) {
		d, err := openWAV(source, outPath, blockSize)
		if err != nil {
			return nil, err
		}

		*opened = d

		return d, nil
	})
}

func (d *wavDevice) SampleRate() float64 { return d.sampleRate }
func (d *wavDevice) Channels() int       { return d.channels }
func (d *wavDevice) BlockSize() int      { return d.blockSize }

// Read decodes up to len(buf) samples. A trailing partial frame is dropped.
func (d *wavDevice) Read(ctx context.Context, buf []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d.inBuf.Data = d.inBuf.Data[:min(len(buf), cap(d.inBuf.Data))]

	n, err := d.dec.PCMBuffer(d.inBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode: %w", err)
	}

	n -= n % d.channels
	if n == 0 {
		return 0, io.EOF
	}

	inv := 1 / d.scale
	for i, v := range d.inBuf.Data[:n] {
		x := float64(v) * inv
		buf[i] = x
		d.peakIn = max(d.peakIn, math.Abs(x))
	}

	return n / d.channels, nil
}

// Write quantizes buf to the output bit depth.
func (d *wavDevice) Write(buf []float64) error {
	d.outBuf.Data = d.outBuf.Data[:0]

	lo, hi := -d.scale, d.scale-1
	for _, x := range buf {
		d.peakOut = max(d.peakOut, math.Abs(x))
		d.outBuf.Data = append(d.outBuf.Data, int(math.Max(lo, math.Min(hi, math.Round(x*d.scale)))))
	}

	if err := d.enc.Write(d.outBuf); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	d.frames += len(buf) / d.channels

	return nil
}

// Close finalizes the output header and closes both files.
func (d *wavDevice) Close() error {
	return errors.Join(d.enc.Close(), d.out.Close(), d.in.Close())
}
