package orchestration

import "sync"

// audioBuffer accumulates inbound audio and hands it out in fixed-size
// chunks. Partial data stays buffered until enough bytes arrive, so
// consumers never see a short chunk.
type audioBuffer struct {
	mu        sync.Mutex
	chunkSize int
	data      []byte
}

func newAudioBuffer(chunkSize int) *audioBuffer {
	return &audioBuffer{chunkSize: chunkSize}
}

func (b *audioBuffer) Add(audio []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, audio...)
}

// GetChunk returns the next full chunk, or nil and false when fewer than
// chunkSize bytes are buffered.
func (b *audioBuffer) GetChunk() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) < b.chunkSize {
		return nil, false
	}

	chunk := make([]byte, b.chunkSize)
	copy(chunk, b.data[:b.chunkSize])
	b.data = b.data[b.chunkSize:]
	return chunk, true
}

// GetAllChunks drains every currently-complete chunk, leaving any trailing
// partial data buffered.
func (b *audioBuffer) GetAllChunks() [][]byte {
	var chunks [][]byte
	for {
		chunk, ok := b.GetChunk()
		if !ok {
			return chunks
		}
		chunks = append(chunks, chunk)
	}
}

// HasData reports whether at least one full chunk is available.
func (b *audioBuffer) HasData() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data) >= b.chunkSize
}
