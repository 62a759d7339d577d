package httpbody

import (
	"context"
	"io"
	"os"
	"testing"
)

func TestBlobReader(t *testing.T) {
	b := NewBlob([]byte("hello world"), "text/plain")
	r, err := b.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
	if b.Length() != 11 {
		t.Fatalf("length = %d", b.Length())
	}
}

func TestFileReader(t *testing.T) {
	f, err := os.CreateTemp("", "extra-body-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString("0123456789"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	b := NewFile(f.Name(), 2, 5, "application/octet-stream")
	r, err := b.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "23456" {
		t.Fatalf("got %q", got)
	}
}

func TestSyncStreamReader(t *testing.T) {
	chunks := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	i := 0
	b := NewSyncStream(func() ([]byte, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}
		c := chunks[i]
		i++
		return c, nil
	}, "text/event-stream")

	r, err := b.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestAsyncStreamReaderCancel(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	b := NewAsyncStream(ctx, "text/event-stream", func(ctx context.Context, push func([]byte) error) {
		close(started)
		_ = push([]byte("first"))
		<-ctx.Done()
	})

	r, err := b.Reader()
	if err != nil {
		t.Fatal(err)
	}
	<-started
	buf := make([]byte, 5)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "first" {
		t.Fatalf("got %q", buf[:n])
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSpoolsLargeBody(t *testing.T) {
	big := make([]byte, SpoolThreshold+10)
	i := 0
	b := NewSyncStream(func() ([]byte, error) {
		if i > 0 {
			return nil, io.EOF
		}
		i++
		return big, nil
	}, "application/octet-stream")

	_, err := Load(&b, nil)
	if !IsSpooled(err) {
		t.Fatalf("expected spool sentinel, got %v", err)
	}
	if b.Kind != KindFile {
		t.Fatalf("expected body to become KindFile, got %v", b.Kind)
	}
	r, err := b.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer os.Remove(b.path)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(big) {
		t.Fatalf("spooled length = %d, want %d", len(got), len(big))
	}
}
