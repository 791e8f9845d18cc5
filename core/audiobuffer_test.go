package orchestration

import (
	"bytes"
	"testing"
)

func TestGetChunkNeverShort(t *testing.T) {
	buffer := newAudioBuffer(160)
	buffer.Add(make([]byte, 100))

	if buffer.HasData() {
		t.Fatal("HasData must be false below one full chunk")
	}
	if chunk, ok := buffer.GetChunk(); ok {
		t.Fatalf("expected no chunk, got %d bytes", len(chunk))
	}

	buffer.Add(make([]byte, 100))
	if !buffer.HasData() {
		t.Fatal("HasData must be true with a full chunk buffered")
	}
	chunk, ok := buffer.GetChunk()
	if !ok || len(chunk) != 160 {
		t.Fatalf("expected exactly one 160-byte chunk, got %d bytes (ok=%t)", len(chunk), ok)
	}

	// 40 bytes remain, below a full chunk.
	if _, ok := buffer.GetChunk(); ok {
		t.Fatal("expected trailing partial data to stay buffered")
	}
}

func TestGetChunkPreservesByteOrder(t *testing.T) {
	buffer := newAudioBuffer(4)
	buffer.Add([]byte{1, 2, 3})
	buffer.Add([]byte{4, 5, 6, 7, 8})

	first, ok := buffer.GetChunk()
	if !ok || !bytes.Equal(first, []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected first chunk: %v", first)
	}
	second, ok := buffer.GetChunk()
	if !ok || !bytes.Equal(second, []byte{5, 6, 7, 8}) {
		t.Fatalf("unexpected second chunk: %v", second)
	}
}

func TestGetAllChunksDrains(t *testing.T) {
	buffer := newAudioBuffer(2)
	buffer.Add([]byte{1, 2, 3, 4, 5})

	chunks := buffer.GetAllChunks()
	if len(chunks) != 2 {
		t.Fatalf("expected 2 full chunks, got %d", len(chunks))
	}
	if buffer.HasData() {
		t.Fatal("expected only a partial byte left after drain")
	}

	buffer.Add([]byte{6})
	chunk, ok := buffer.GetChunk()
	if !ok || !bytes.Equal(chunk, []byte{5, 6}) {
		t.Fatalf("expected partial data completed into %v, got %v", []byte{5, 6}, chunk)
	}
}
