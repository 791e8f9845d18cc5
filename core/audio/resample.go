package audio

import (
	"encoding/binary"
	"fmt"
)

// fixedPointShift gives 16 fractional bits for the interpolation position,
// enough for exact ratios between the supported telephony rates.
const fixedPointShift = 16

// resampleLinear16 converts 16-bit little-endian PCM from one sample rate to
// another using linear interpolation with fixed-point position stepping. The
// conversion is fully deterministic: the same input always yields the same
// output.
func resampleLinear16(data []byte, fromRate, toRate int) ([]byte, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d -> %d", fromRate, toRate)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("linear16 payload has odd length %d", len(data))
	}
	if fromRate == toRate || len(data) == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	samples := len(data) / 2
	outSamples := samples * toRate / fromRate
	out := make([]byte, outSamples*2)

	step := (int64(fromRate) << fixedPointShift) / int64(toRate)
	pos := int64(0)
	for i := 0; i < outSamples; i++ {
		idx := int(pos >> fixedPointShift)
		frac := pos & ((1 << fixedPointShift) - 1)

		s0 := int16(binary.LittleEndian.Uint16(data[idx*2:]))
		s1 := s0
		if idx+1 < samples {
			s1 = int16(binary.LittleEndian.Uint16(data[(idx+1)*2:]))
		}

		interpolated := int64(s0) + (int64(s1)-int64(s0))*frac>>fixedPointShift
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(interpolated)))

		pos += step
	}

	return out, nil
}
