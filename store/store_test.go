package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wippyai/variant/container"
	varerrors "github.com/wippyai/variant/errors"
)

// int4 42, null int4, and text "hello"
var (
	int42    = container.Container{0x0c, 0, 0, 0, 0x17, 0, 0, 0, 0x2a, 0, 0, 0}
	nullInt4 = container.Container{0x08, 0, 0, 0, 0x17, 0, 0, 0x40}
	hello    = container.Container{0x0d, 0, 0, 0, 0x19, 0, 0, 0, 'h', 'e', 'l', 'l', 'o'}
)

type countingRecorder struct {
	ops     map[string]int
	errs    int
	written int
}

func (r *countingRecorder) StoreOperation(backend, op string, err error) {
	if r.ops == nil {
		r.ops = map[string]int{}
	}
	r.ops[backend+"/"+op]++
	if err != nil {
		r.errs++
	}
}

func (r *countingRecorder) ContainerWritten(n int) { r.written += n }

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	for key, c := range map[string]container.Container{"a": int42, "b": nullInt4, "c": hello} {
		if err := s.Put(ctx, key, c); err != nil {
			t.Fatalf("Put(%s): %v", key, err)
		}
	}

	got, err := s.Get(ctx, "c")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.String() != hello.String() {
		t.Errorf("Get = %s, want %s", got, hello)
	}

	if err := s.Put(ctx, "c", int42); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "c")
	if got.String() != int42.String() {
		t.Errorf("after overwrite Get = %s", got)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, varerrors.ErrNotFound) {
		t.Errorf("Get deleted: err = %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, varerrors.ErrNotFound) {
		t.Errorf("Delete twice: err = %v", err)
	}

	if err := s.Put(ctx, "", int42); !errors.Is(err, varerrors.ErrInvalidInput) {
		t.Errorf("empty key: err = %v", err)
	}
	if err := s.Put(ctx, "bad", container.Container{1, 2, 3}); !errors.Is(err, varerrors.ErrMalformed) {
		t.Errorf("malformed: err = %v", err)
	}

	got, err = s.Get(ctx, "b")
	if err != nil || got.String() != nullInt4.String() {
		t.Errorf("Get null = %s, %v", got, err)
	}
}

func TestBadger_InMemory(t *testing.T) {
	for _, compress := range []bool{false, true} {
		rec := &countingRecorder{}
		s, err := OpenBadger("", WithCompression(compress), WithMetrics(rec))
		if err != nil {
			t.Fatalf("OpenBadger: %v", err)
		}
		exerciseStore(t, s)

		keys, err := s.Keys(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 2 || keys[0] != "b" || keys[1] != "c" {
			t.Errorf("Keys = %v", keys)
		}
		if rec.ops["badger/put"] != 6 || rec.written != len(int42)*2+len(nullInt4)+len(hello) {
			t.Errorf("recorder = %+v", rec)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBadger_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", hello); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenBadger(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "k")
	if err != nil || got.String() != hello.String() {
		t.Errorf("Get after reopen = %s, %v", got, err)
	}
}

func TestLinear(t *testing.T) {
	s, err := OpenLinear(context.Background(), LinearConfig{})
	if err != nil {
		t.Fatalf("OpenLinear: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	for _, key := range []string{"b", "c"} {
		off, ok := s.Offset(key)
		if !ok || off%slotAlign != 0 {
			t.Errorf("Offset(%s) = %d, %v", key, off, ok)
		}
	}
}

func TestLinear_Grows(t *testing.T) {
	ctx := context.Background()
	s, err := OpenLinear(ctx, LinearConfig{MemoryLimitPages: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	big := make(container.Container, 40000)
	big[0], big[1] = 0x40, 0x9c // 40000
	big[4] = 0x19               // text

	for _, key := range []string{"1", "2", "3"} {
		if err := s.Put(ctx, key, big); err != nil {
			t.Fatalf("Put(%s): %v", key, err)
		}
	}
	if s.mem.Size() < 2*pageSize {
		t.Errorf("memory size = %d, expected growth", s.mem.Size())
	}

	for i := 0; i < 10; i++ {
		if err = s.Put(ctx, "more"+string(rune('a'+i)), big); err != nil {
			break
		}
	}
	if !errors.Is(err, varerrors.ErrInvalidInput) {
		t.Errorf("expected limit error, got %v", err)
	}
}

func TestLinear_DeleteReclaimsTail(t *testing.T) {
	ctx := context.Background()
	s, err := OpenLinear(ctx, LinearConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_ = s.Put(ctx, "x", int42)
	_ = s.Put(ctx, "y", hello)
	off, _ := s.Offset("y")
	if err := s.Delete(ctx, "y"); err != nil {
		t.Fatal(err)
	}
	_ = s.Put(ctx, "z", int42)
	if got, _ := s.Offset("z"); got != off {
		t.Errorf("tail slot not reused: %d != %d", got, off)
	}
}

func TestFrame(t *testing.T) {
	for _, compress := range []bool{false, true} {
		b := frame(hello, compress)
		got, err := unframe(b)
		if err != nil {
			t.Fatalf("unframe(compress=%v): %v", compress, err)
		}
		if got.String() != hello.String() {
			t.Errorf("unframe = %s", got)
		}
	}

	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"bad tag", []byte{7, 1, 2}},
		{"bad snappy", []byte{frameSnappy, 0xff, 0xff, 0xff}},
		{"bad container", []byte{frameRaw, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := unframe(tt.in); !errors.Is(err, varerrors.ErrMalformed) {
				t.Errorf("err = %v, want malformed", err)
			}
		})
	}
}

func TestRedis_Config(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); !errors.Is(err, varerrors.ErrInvalidInput) {
		t.Errorf("empty addr: err = %v", err)
	}

	s := NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "variant:")
	defer s.Close()
	if got := s.key("k1"); got != "variant:k1" {
		t.Errorf("key = %q", got)
	}
	if err := s.Put(context.Background(), "", int42); !errors.Is(err, varerrors.ErrInvalidInput) {
		t.Errorf("empty key: err = %v", err)
	}
}

func TestRedis_Store(t *testing.T) {
	for _, compress := range []bool{false, true} {
		srv := miniredis.RunT(t)
		rec := &countingRecorder{}
		s, err := OpenRedis(context.Background(), RedisConfig{
			Addr:   srv.Addr(),
			Prefix: "variant:",
			TTL:    time.Minute,
		}, WithCompression(compress), WithMetrics(rec))
		if err != nil {
			t.Fatalf("OpenRedis: %v", err)
		}
		exerciseStore(t, s)

		keys := srv.Keys()
		if len(keys) != 2 || keys[0] != "variant:b" || keys[1] != "variant:c" {
			t.Errorf("server keys = %v", keys)
		}
		if ttl := srv.TTL("variant:c"); ttl != time.Minute {
			t.Errorf("ttl = %v, want 1m", ttl)
		}
		if rec.ops["redis/put"] != 6 || rec.ops["redis/delete"] != 2 {
			t.Errorf("recorder = %+v", rec)
		}

		srv.FastForward(2 * time.Minute)
		if _, err := s.Get(context.Background(), "c"); !errors.Is(err, varerrors.ErrNotFound) {
			t.Errorf("expired Get: err = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRedis_NoTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	s := NewRedis(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "p/")
	defer s.Close()

	if err := s.Put(context.Background(), "k", int42); err != nil {
		t.Fatal(err)
	}
	if ttl := srv.TTL("p/k"); ttl != 0 {
		t.Errorf("ttl = %v, want none", ttl)
	}
	raw, err := srv.Get("p/k")
	if err != nil {
		t.Fatal(err)
	}
	if raw[0] != frameRaw || raw[1:] != string(int42) {
		t.Errorf("stored %x", raw)
	}
}

func TestRedis_BackendError(t *testing.T) {
	srv := miniredis.RunT(t)
	s := NewRedis(redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1}), "")
	defer s.Close()
	srv.SetError("ERR server unavailable")

	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, varerrors.ErrBackend) {
		t.Errorf("err = %v, want backend", err)
	}
}
