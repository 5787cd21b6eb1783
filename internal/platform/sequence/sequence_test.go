package sequence

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestCounter(t *testing.T) *RedisCounter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCounter(client)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		seq    int64
		suffix string
		want   string
	}{
		{"2026-08", 1, "TZ", "2026-08-0001-TZ"},
		{"2026-08", 33, "TZ", "2026-08-0033-TZ"},
		{"2026-12", 9999, "KE", "2026-12-9999-KE"},
		// past 9999 the sequence widens instead of wrapping
		{"2026-12", 10000, "TZ", "2026-12-10000-TZ"},
	}
	for _, tt := range tests {
		if got := Format(tt.prefix, tt.seq, tt.suffix); got != tt.want {
			t.Errorf("Format(%s, %d, %s) = %s, want %s", tt.prefix, tt.seq, tt.suffix, got, tt.want)
		}
	}
}

func TestGenerator_Next(t *testing.T) {
	gen := NewGenerator(setupTestCounter(t), "tz")
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{4}-[A-Z]{2}$`)
	for i, want := range []string{"2026-08-0001-TZ", "2026-08-0002-TZ", "2026-08-0003-TZ"} {
		got, err := gen.Next(context.Background(), at)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
		if !pattern.MatchString(got) {
			t.Errorf("number %s does not match expected pattern", got)
		}
	}
}

func TestGenerator_ScopedByPrefix(t *testing.T) {
	gen := NewGenerator(setupTestCounter(t), "TZ")

	aug := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	if n, _ := gen.Next(context.Background(), aug); n != "2026-08-0001-TZ" {
		t.Errorf("unexpected august number: %s", n)
	}
	if n, _ := gen.Next(context.Background(), sep); n != "2026-09-0001-TZ" {
		t.Errorf("expected september scope to restart, got %s", n)
	}
	if n, _ := gen.Next(context.Background(), aug); n != "2026-08-0002-TZ" {
		t.Errorf("expected august scope to continue, got %s", n)
	}
}

func TestGenerator_ConcurrentCreatesAreDistinct(t *testing.T) {
	gen := NewGenerator(setupTestCounter(t), "TZ")
	at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	const n = 50
	var wg sync.WaitGroup
	numbers := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			num, err := gen.Next(context.Background(), at)
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			numbers[i] = num
		}(i)
	}
	wg.Wait()

	sort.Strings(numbers)
	for i := 0; i < n; i++ {
		want := Format("2026-08", int64(i+1), "TZ")
		if numbers[i] != want {
			t.Fatalf("expected distinct gap-free sequence, position %d: got %s, want %s", i, numbers[i], want)
		}
	}
}

func TestGenerator_CounterUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	gen := NewGenerator(NewRedisCounter(client), "TZ")
	mr.Close()

	_, err := gen.Next(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error when counter store is unreachable")
	}
}

type failingCounter struct{}

func (failingCounter) Next(context.Context, string) (int64, error) {
	return 0, errors.New("counter down")
}

func TestGenerator_PropagatesCounterError(t *testing.T) {
	gen := NewGenerator(failingCounter{}, "TZ")
	if _, err := gen.Next(context.Background(), time.Now()); err == nil {
		t.Fatal("expected counter error to propagate")
	}
}
