package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/overlay/internal/overlaytype"
	"github.com/meigma/overlay/internal/sizing"
)

// DefaultMaxDecoderMemory is the default decoder memory ceiling (256MB).
const DefaultMaxDecoderMemory = 256 << 20

// maxExpansion bounds the output buffer preallocated for a stored block,
// relative to its stored size. DecodeAll grows the buffer beyond it.
const maxExpansion = 16

// Decoder decompresses stored resource bodies using pooled zstd decoders.
type Decoder struct {
	pool             *sync.Pool
	maxDecoderMemory uint64
}

// NewDecoder creates a Decoder. If maxMemory is 0, no memory limit is
// applied to the underlying zstd decoders.
func NewDecoder(maxMemory uint64) *Decoder {
	d := &Decoder{maxDecoderMemory: maxMemory}
	d.pool = &sync.Pool{
		New: func() any {
			dec, err := d.newDecoder()
			if err != nil {
				return nil
			}
			return dec
		},
	}
	return d
}

// get returns a decoder and the function that hands it back to the pool.
func (d *Decoder) get() (*zstd.Decoder, func(), error) {
	if dec, ok := d.pool.Get().(*zstd.Decoder); ok && dec != nil {
		return dec, func() { d.pool.Put(dec) }, nil
	}
	// Pool's New function failed, try directly so the error surfaces.
	dec, err := d.newDecoder()
	if err != nil {
		return nil, nil, err
	}
	return dec, dec.Close, nil
}

func (d *Decoder) newDecoder() (*zstd.Decoder, error) {
	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	}
	if d.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(d.maxDecoderMemory))
	}
	return zstd.NewReader(nil, opts...)
}

// Decompress reverses Compress. It never returns partial data: a truncated
// or malformed stream fails with ErrCompression. rawLength only sizes the
// output buffer; comparing the result with the recorded raw length is the
// caller's job; the buffer it sizes is also capped by the stored length.
func (d *Decoder) Decompress(src []byte, rawLength uint64, level int) ([]byte, error) {
	if !overlaytype.ValidLevel(level) {
		return nil, fmt.Errorf("%w: level %d out of range", overlaytype.ErrCompression, level)
	}
	if level == overlaytype.LevelNone {
		return src, nil
	}
	// Compress always emits a complete frame, even for empty input.
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: empty zstd stream", overlaytype.ErrCompression)
	}
	if d.maxDecoderMemory != 0 && rawLength > d.maxDecoderMemory {
		return nil, fmt.Errorf("%w: raw length %d exceeds decoder memory limit %d",
			overlaytype.ErrSizeLimit, rawLength, d.maxDecoderMemory)
	}
	capacity, err := sizing.ToInt(min(rawLength, uint64(len(src))*maxExpansion))
	if err != nil {
		return nil, err
	}

	dec, release, err := d.get()
	if err != nil {
		return nil, fmt.Errorf("%w: create zstd decoder: %v", overlaytype.ErrCompression, err)
	}
	defer release()

	out, err := dec.DecodeAll(src, make([]byte, 0, capacity))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", overlaytype.ErrCompression, err)
	}
	return out, nil
}
