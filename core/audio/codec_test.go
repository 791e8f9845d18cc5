package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

func sineFrame(encoding EncodingInfo, duration time.Duration) Frame {
	samples := int(int64(encoding.SampleRate) * int64(duration) / int64(time.Second))
	data := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		sample := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(encoding.SampleRate)))
		binary.LittleEndian.PutUint16(data[i*2:], uint16(sample))
	}
	return NewFrame(data, encoding)
}

func TestEncodeOutboundPreservesFrameDuration(t *testing.T) {
	codec := NewCodec()
	linear := sineFrame(WideBandEncoding(), 20*time.Millisecond)

	wire, err := codec.EncodeOutbound(linear)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	if got := wire.Len(); got != 160 {
		t.Fatalf("expected 160 wire bytes for a 20ms frame, got %d", got)
	}
	if got := wire.Duration(); got != linear.Duration() {
		t.Fatalf("expected duration %v preserved, got %v", linear.Duration(), got)
	}
}

func TestRoundTripPreservesDeclaredDuration(t *testing.T) {
	codec := NewCodec()
	linear := sineFrame(WideBandEncoding(), 20*time.Millisecond)

	wire, err := codec.EncodeOutbound(linear)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	back, err := codec.DecodeInbound(wire)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if back.Duration() != linear.Duration() {
		t.Fatalf("round trip changed duration: %v -> %v", linear.Duration(), back.Duration())
	}
	if back.Len() != linear.Len() {
		t.Fatalf("round trip changed payload size: %d -> %d", linear.Len(), back.Len())
	}
}

func TestEncodeOutboundRejectsOddLengthPayload(t *testing.T) {
	codec := NewCodec()

	_, err := codec.EncodeOutbound(NewFrame([]byte{0x01, 0x02, 0x03}, WideBandEncoding()))
	if err == nil {
		t.Fatalf("expected error for odd-length linear payload")
	}

	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Fatalf("expected CodecError, got %T", err)
	}
}

func TestDecodeInboundRejectsWrongFormat(t *testing.T) {
	codec := NewCodec()

	_, err := codec.DecodeInbound(NewFrame(make([]byte, 160), WideBandEncoding()))
	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Fatalf("expected CodecError for linear input on the decode path, got %v", err)
	}
}

func TestResampleLinear16Ratios(t *testing.T) {
	data := make([]byte, 160*2)
	for i := 0; i < 160; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(i*100)))
	}

	up, err := resampleLinear16(data, 8000, 16000)
	if err != nil {
		t.Fatalf("unexpected upsample error: %v", err)
	}
	if len(up) != 160*2*2 {
		t.Fatalf("expected upsampled payload of %d bytes, got %d", 160*2*2, len(up))
	}

	down, err := resampleLinear16(up, 16000, 8000)
	if err != nil {
		t.Fatalf("unexpected downsample error: %v", err)
	}
	if len(down) != len(data) {
		t.Fatalf("expected downsampled payload of %d bytes, got %d", len(data), len(down))
	}
}

func TestResampleLinear16SameRateCopies(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	out, err := resampleLinear16(data, 8000, 8000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &out[0] == &data[0] {
		t.Fatalf("expected same-rate resample to copy, not alias")
	}
}

func TestFrameImmutability(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	frame := NewFrame(raw, TelephonyEncoding())
	raw[0] = 99

	if frame.Data()[0] != 1 {
		t.Fatalf("frame payload aliases caller's buffer")
	}
}

func TestSilenceDecodesToLinearZeros(t *testing.T) {
	codec := NewCodec()

	silence := codec.Silence(160)
	if silence.Len() != 160 {
		t.Fatalf("expected 160 silence bytes, got %d", silence.Len())
	}

	decoded, err := codec.DecodeInbound(silence)
	if err != nil {
		t.Fatalf("DecodeInbound failed on silence: %v", err)
	}
	for i := 0; i < decoded.Len(); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(decoded.Data()[i:]))
		if sample != 0 {
			t.Fatalf("silence decoded to non-zero sample %d at offset %d", sample, i)
		}
	}
}

func TestBytesPerFrame(t *testing.T) {
	if got := TelephonyEncoding().BytesPerFrame(20 * time.Millisecond); got != 160 {
		t.Fatalf("expected 160 bytes per 20ms telephony frame, got %d", got)
	}
	if got := WideBandEncoding().BytesPerFrame(20 * time.Millisecond); got != 640 {
		t.Fatalf("expected 640 bytes per 20ms wide-band frame, got %d", got)
	}
}
