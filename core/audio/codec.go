package audio

import (
	"fmt"

	"github.com/zaf/g711"
)

// CodecError marks malformed audio input. Callers at the component boundary
// are expected to catch it and substitute silence rather than propagate it.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Codec converts between the telephony wire encoding (companded narrow-band)
// and the linear wide-band encoding used by speech services. Both directions
// preserve the frame duration invariant: a payload's play time is unchanged
// by conversion.
type Codec struct {
	wire   EncodingInfo
	linear EncodingInfo
}

func NewCodec() *Codec {
	return &Codec{wire: TelephonyEncoding(), linear: WideBandEncoding()}
}

// WireEncoding returns the telephony-side encoding.
func (c *Codec) WireEncoding() EncodingInfo { return c.wire }

// LinearEncoding returns the speech-service-side encoding.
func (c *Codec) LinearEncoding() EncodingInfo { return c.linear }

// DecodeInbound expands a companded telephony frame into linear wide-band
// PCM. It is total over well-formed input and returns a CodecError on
// malformed payloads.
func (c *Codec) DecodeInbound(frame Frame) (Frame, error) {
	if frame.Encoding().Format != c.wire.Format {
		return Frame{}, &CodecError{Op: "decode", Err: fmt.Errorf("unexpected inbound format %q", frame.Encoding().Format.Name())}
	}

	var linear []byte
	switch c.wire.Format {
	case EncodingMulaw:
		linear = g711.DecodeUlaw(frame.Data())
	case EncodingALaw:
		linear = g711.DecodeAlaw(frame.Data())
	default:
		return Frame{}, &CodecError{Op: "decode", Err: fmt.Errorf("unsupported wire format %q", c.wire.Format.Name())}
	}

	resampled, err := resampleLinear16(linear, c.wire.SampleRate, c.linear.SampleRate)
	if err != nil {
		return Frame{}, &CodecError{Op: "decode", Err: err}
	}

	return NewFrame(resampled, c.linear), nil
}

// EncodeOutbound compands a linear frame down to the telephony wire
// encoding, resampling to the narrow-band rate first.
func (c *Codec) EncodeOutbound(frame Frame) (Frame, error) {
	if frame.Encoding().Format != EncodingLinear16 {
		return Frame{}, &CodecError{Op: "encode", Err: fmt.Errorf("unexpected outbound format %q", frame.Encoding().Format.Name())}
	}

	narrow, err := resampleLinear16(frame.Data(), frame.Encoding().SampleRate, c.wire.SampleRate)
	if err != nil {
		return Frame{}, &CodecError{Op: "encode", Err: err}
	}

	var companded []byte
	switch c.wire.Format {
	case EncodingMulaw:
		companded = g711.EncodeUlaw(narrow)
	case EncodingALaw:
		companded = g711.EncodeAlaw(narrow)
	default:
		return Frame{}, &CodecError{Op: "encode", Err: fmt.Errorf("unsupported wire format %q", c.wire.Format.Name())}
	}

	return NewFrame(companded, c.wire), nil
}

// Silence returns a frame of n wire bytes filled with the encoding's
// silence value, used as the safe substitute for malformed audio.
func (c *Codec) Silence(n int) Frame {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = c.wire.SilenceValue()
	}
	return NewFrame(payload, c.wire)
}
