// Package codec compresses and decompresses resource bodies.
//
// Level 0 is the identity transform. Levels 1-9 produce zstd frames; the
// level is mapped onto the encoder's speed presets with
// zstd.EncoderLevelFromZstd.
package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/overlay/internal/overlaytype"
)

// encoders caches one encoder per speed preset. EncodeAll is safe for
// concurrent use, so a single encoder per preset is shared.
var encoders = struct {
	mu  sync.Mutex
	enc map[zstd.EncoderLevel]*zstd.Encoder
}{enc: make(map[zstd.EncoderLevel]*zstd.Encoder)}

// encoderFor returns the shared encoder for a 1-9 level.
func encoderFor(level int) (*zstd.Encoder, error) {
	speed := zstd.EncoderLevelFromZstd(level)

	encoders.mu.Lock()
	defer encoders.mu.Unlock()

	if enc, ok := encoders.enc[speed]; ok {
		return enc, nil
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(speed),
		zstd.WithEncoderConcurrency(1),
		zstd.WithLowerEncoderMem(true),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create zstd encoder: %v", overlaytype.ErrCompression, err)
	}
	encoders.enc[speed] = enc
	return enc, nil
}

// Compress returns the stored form of src at the given level.
// Level 0 returns src unchanged.
func Compress(src []byte, level int) ([]byte, error) {
	if !overlaytype.ValidLevel(level) {
		return nil, fmt.Errorf("%w: level %d out of range %d-%d",
			overlaytype.ErrCompression, level, overlaytype.LevelNone, overlaytype.LevelMax)
	}
	if level == overlaytype.LevelNone {
		return src, nil
	}
	enc, err := encoderFor(level)
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(src, make([]byte, 0, len(src)/2+64)), nil
}
