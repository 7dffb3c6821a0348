package source

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

func drain(t *testing.T, src Source) []string {
	t.Helper()
	var words []string
	for {
		w, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return words
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		words = append(words, w)
	}
}

func TestReader(t *testing.T) {
	got := drain(t, NewReader(strings.NewReader("The cat's hat, the CAT!"), 0))
	want := []string{"the", "cats", "hat", "the", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader(strings.NewReader("word"), 0).Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeMessages struct {
	values [][]byte
	err    error
	closed bool
}

func (f *fakeMessages) Next(context.Context) ([]byte, error) {
	if len(f.values) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	v := f.values[0]
	f.values = f.values[1:]
	return v, nil
}

func (f *fakeMessages) Close() error {
	f.closed = true
	return nil
}

func TestKafkaTokenizesMessages(t *testing.T) {
	fake := &fakeMessages{values: [][]byte{
		[]byte("Hello world"),
		[]byte("   "),
		[]byte("hello again"),
	}}
	src := NewKafka(fake, 0)
	got := drain(t, src)
	want := []string{"hello", "world", "hello", "again"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if src.Messages() != 3 {
		t.Fatalf("messages = %d, want 3", src.Messages())
	}
	if err := src.Close(); err != nil || !fake.closed {
		t.Fatalf("close: err=%v closed=%v", err, fake.closed)
	}
}

func TestKafkaWordsDoNotSpanMessages(t *testing.T) {
	src := NewKafka(&fakeMessages{values: [][]byte{[]byte("foo"), []byte("bar")}}, 0)
	got := drain(t, src)
	if !reflect.DeepEqual(got, []string{"foo", "bar"}) {
		t.Fatalf("got %v", got)
	}
}

func TestKafkaReadError(t *testing.T) {
	src := NewKafka(&fakeMessages{err: errors.New("broker down")}, 0)
	_, err := src.Next(context.Background())
	if !errors.Is(err, apperrors.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
