package store

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/variant/container"
	"github.com/wippyai/variant/errors"
	"github.com/wippyai/variant/internal/layout"
)

const (
	backendLinear = "linear"
	pageSize      = 65536
	slotAlign     = 8
)

// arenaModule is an empty module exporting one memory of one page:
//
//	(module (memory (export "memory") 1))
var arenaModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: min 1 page
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export "memory"
}

type span struct {
	offset uint32
	length uint32
}

// Linear keeps containers in a WebAssembly linear memory, the way a guest
// module would see them. Space is bump-allocated at 8-byte alignment; a
// Put that replaces a key reuses its slot when the new container fits.
type Linear struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	mod     api.Module
	mem     api.Memory
	index   map[string]span
	next    uint32
	opts    options
}

var _ Store = (*Linear)(nil)

// LinearConfig bounds the arena.
type LinearConfig struct {
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"` // 0 uses the runtime default
}

// OpenLinear instantiates the arena module.
func OpenLinear(ctx context.Context, cfg LinearConfig, opts ...Option) (*Linear, error) {
	o := buildOptions(opts)

	rcfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rcfg = rcfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rcfg)

	compiled, err := rt.CompileModule(ctx, arenaModule)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, backendError(backendLinear, "compile", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, backendError(backendLinear, "instantiate", err)
	}
	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, backendError(backendLinear, "instantiate", errors.InvalidInput(errors.PhaseStore, "arena module exports no memory"))
	}

	o.log.Debug("linear store opened", zap.Uint32("pages", mem.Size()/pageSize))

	return &Linear{
		runtime: rt,
		mod:     mod,
		mem:     mem,
		index:   make(map[string]span),
		opts:    o,
	}, nil
}

// Put copies c into the arena.
func (s *Linear) Put(ctx context.Context, key string, c container.Container) (err error) {
	defer func() { s.opts.observe(backendLinear, "put", err) }()

	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkContainer(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := uint32(len(c))
	offset, reuse := uint32(0), false
	if old, ok := s.index[key]; ok && old.length >= n {
		offset, reuse = old.offset, true
	}
	if !reuse {
		offset, err = s.alloc(n)
		if err != nil {
			return err
		}
	}

	if !s.mem.Write(offset, c) {
		return backendError(backendLinear, "put", errors.InvalidInput(errors.PhaseStore, "write out of bounds"))
	}
	s.index[key] = span{offset: offset, length: n}
	s.opts.written(len(c))
	return nil
}

func (s *Linear) alloc(n uint32) (uint32, error) {
	offset := layout.AlignTo(s.next, slotAlign)
	end, ok := layout.SafeAddU32(offset, n)
	if !ok {
		return 0, backendError(backendLinear, "alloc", errors.InvalidInput(errors.PhaseStore, "arena address overflow"))
	}

	if size := s.mem.Size(); end > size {
		need := (end - size + pageSize - 1) / pageSize
		if _, ok := s.mem.Grow(need); !ok {
			return 0, backendError(backendLinear, "alloc",
				errors.InvalidInput(errors.PhaseStore, "arena memory limit reached"))
		}
		s.opts.log.Debug("linear store grew", zap.Uint32("pages", s.mem.Size()/pageSize))
	}

	s.next = end
	return offset, nil
}

// Get copies the container out of the arena.
func (s *Linear) Get(ctx context.Context, key string) (c container.Container, err error) {
	defer func() { s.opts.observe(backendLinear, "get", err) }()

	if err := checkKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.index[key]
	if !ok {
		return nil, notFound(key)
	}
	view, ok := s.mem.Read(sp.offset, sp.length)
	if !ok {
		return nil, backendError(backendLinear, "get", errors.InvalidInput(errors.PhaseStore, "read out of bounds"))
	}
	out := make(container.Container, len(view))
	copy(out, view)
	return out, nil
}

// Delete forgets key. Its space is reclaimed only if it was the last slot.
func (s *Linear) Delete(ctx context.Context, key string) (err error) {
	defer func() { s.opts.observe(backendLinear, "delete", err) }()

	if err := checkKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.index[key]
	if !ok {
		return notFound(key)
	}
	delete(s.index, key)
	if sp.offset+sp.length == s.next {
		s.next = sp.offset
	}
	return nil
}

// Offset returns the arena address of key's container.
func (s *Linear) Offset(key string) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.index[key]
	return sp.offset, ok
}

// Len returns the number of stored keys.
func (s *Linear) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Close releases the runtime.
func (s *Linear) Close() error {
	if err := s.runtime.Close(context.Background()); err != nil {
		return backendError(backendLinear, "close", err)
	}
	return nil
}
