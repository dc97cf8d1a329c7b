package chunker

import (
	"strings"
	"testing"

	"github.com/docbase-labs/docbase-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.chunkSize)
		}
		if c.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, c.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		c := New(WithChunkSize(500))
		if c.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", c.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		c := New(WithChunkSize(100), WithOverlap(150))
		if c.overlap >= c.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlap(-1))
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", c.chunkSize)
		}
		if c.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", c.overlap)
		}
	})
}

func TestSplit_EmptyContent(t *testing.T) {
	c := New()
	doc := &domain.Document{SourceID: "doc-1", Content: ""}

	chunks := c.Split(doc)
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestSplit_SmallContent(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{SourceID: "doc-1", Content: "This is a small piece of content."}

	chunks := c.Split(doc)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small content, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if chunks[0].Content != doc.Content {
		t.Errorf("expected chunk content to equal document content")
	}
	if chunks[0].ContentHash != domain.HashContent(doc.Content) {
		t.Error("expected content hash of chunk text")
	}
}

func TestSplit_LargeContent(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{
		SourceID: "doc-1",
		Content:  strings.Repeat("abcdefghij", 30), // 300 bytes
	}

	chunks := c.Split(doc)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, chunk.Index)
		}
		if chunk.SourceID != "doc-1" {
			t.Errorf("chunk %d: wrong source id %q", i, chunk.SourceID)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c := New(WithChunkSize(64), WithOverlap(16))
	doc := &domain.Document{
		SourceID: "doc-1",
		Content:  strings.Repeat("the quick brown fox ", 40),
	}

	first := c.Split(doc)
	second := c.Split(doc)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d: IDs differ across runs", i)
		}
		if first[i].Index != second[i].Index {
			t.Errorf("chunk %d: indexes differ across runs", i)
		}
		if first[i].ContentHash != second[i].ContentHash {
			t.Errorf("chunk %d: hashes differ across runs", i)
		}
	}
}

func TestSplit_OverlapCoversContent(t *testing.T) {
	c := New(WithChunkSize(50), WithOverlap(10))
	content := strings.Repeat("0123456789", 20)
	doc := &domain.Document{SourceID: "doc-1", Content: content}

	chunks := c.Split(doc)

	// The last chunk must end exactly at the end of the content.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(content, last.Content) {
		t.Error("last chunk does not cover the end of the document")
	}
}
