package audio

import "time"

const (
	// TelephonySampleRate is the narrow-band rate used by the media stream.
	TelephonySampleRate = 8000
	// WideBandSampleRate is the linear rate expected by speech services.
	WideBandSampleRate = 16000
)

// TelephonyEncoding returns the encoding used on the telephony wire:
// companded mu-law at 8 kHz, mono.
func TelephonyEncoding() EncodingInfo {
	return EncodingInfo{SampleRate: TelephonySampleRate, Format: EncodingMulaw, Channels: 1}
}

// WideBandEncoding returns the linear encoding used towards speech services.
func WideBandEncoding() EncodingInfo {
	return EncodingInfo{SampleRate: WideBandSampleRate, Format: EncodingLinear16, Channels: 1}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
	Channels   int
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

// BytesPerFrame returns the payload size of a single frame of the given
// duration: bytes-per-sample x channels x sample-rate x duration.
func (e EncodingInfo) BytesPerFrame(frameDuration time.Duration) int {
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	samples := int(int64(e.SampleRate) * int64(frameDuration) / int64(time.Second))
	return samples * e.Format.ByteSize() * channels
}

// Duration returns the play time of a payload of n bytes in this encoding.
func (e EncodingInfo) Duration(n int) time.Duration {
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	bytesPerSecond := e.SampleRate * e.Format.ByteSize() * channels
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(bytesPerSecond))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
