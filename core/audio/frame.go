package audio

import "time"

// Frame is an immutable chunk of audio tagged with its encoding. Conversions
// never mutate a frame in place; they produce new frames.
type Frame struct {
	data     []byte
	encoding EncodingInfo
}

func NewFrame(data []byte, encoding EncodingInfo) Frame {
	owned := make([]byte, len(data))
	copy(owned, data)
	return Frame{data: owned, encoding: encoding}
}

// Data returns the frame payload. Callers must treat it as read-only.
func (f Frame) Data() []byte { return f.data }

func (f Frame) Encoding() EncodingInfo { return f.encoding }

func (f Frame) Len() int { return len(f.data) }

func (f Frame) Duration() time.Duration {
	return f.encoding.Duration(len(f.data))
}
