/*
Package factory is the entry point of the codec: it loads type files for a
target architecture and creates empty value trees of the loaded types.

	f := factory.Make(factory.WithLogger(log))
	if err := f.SetTargetType("ARM"); err != nil { ... }
	if err := f.LoadTypeFile("xbee_typpo.yaml"); err != nil { ... }
	pay, err := f.Create("xbee_payload")
*/
package factory

import (
	"fmt"
	"os"

	"github.com/pioneers/typpo/pkg/config"
	"github.com/pioneers/typpo/pkg/config/archmode"
	"github.com/pioneers/typpo/pkg/schema"
	"github.com/pioneers/typpo/pkg/value"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	// ErrConcurrentLoad is returned when a load overlaps another load into
	// the same Factory.
	ErrConcurrentLoad = errors.New("concurrent type load")
)

// Factory owns the schema set of one target architecture. Loading is not
// reentrant; once loads are done the factory can be shared by readers.
type Factory struct {
	log     *zap.Logger
	cache   *Cache
	profile archmode.Profile
	set     *schema.Set
	loading *atomic.Bool
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger, zap.NewNop() is used by default.
func WithLogger(log *zap.Logger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// WithCache sets the schema set cache. A nil cache disables caching.
func WithCache(c *Cache) Option {
	return func(f *Factory) {
		f.cache = c
	}
}

// Make returns a Factory with no target and no types loaded.
func Make(opts ...Option) *Factory {
	f := &Factory{
		log:     zap.NewNop(),
		cache:   defaultCache,
		loading: atomic.NewBool(false),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// MakeFromConfig returns a Factory targeting cfg.TargetType with
// cfg.TypeFiles loaded in order. Unless overridden by opts, loaded sets
// are cached in a cache of cfg.SchemaCacheSize.
func MakeFromConfig(cfg config.CodecConfiguration, opts ...Option) (*Factory, error) {
	c, err := NewCache(cfg.SchemaCacheSize)
	if err != nil {
		return nil, err
	}
	f := Make(append([]Option{WithCache(c)}, opts...)...)
	if cfg.TargetType != "" {
		if err := f.SetTargetType(cfg.TargetType); err != nil {
			return nil, err
		}
	}
	for _, path := range cfg.TypeFiles {
		if err := f.LoadTypeFile(path); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SetTargetType selects the architecture profile that type files are
// loaded for. It must precede loading; once types are loaded the target
// can't change.
func (f *Factory) SetTargetType(arch string) error {
	p, ok := archmode.Lookup(arch)
	if !ok {
		return &schema.Error{Reason: fmt.Sprintf("unknown target architecture %q (known: %v)", arch, archmode.Names())}
	}
	if f.set != nil && f.profile.Name != p.Name {
		return &schema.Error{Reason: fmt.Sprintf("types are already loaded for %s", f.profile.Name)}
	}
	f.profile = p
	f.log.Debug("target architecture set", zap.Stringer("target", p))
	return nil
}

// Target returns the selected architecture profile.
func (f *Factory) Target() archmode.Profile {
	return f.profile
}

// LoadTypeFile loads the type definitions stored at path. Types may refer
// to types loaded before. On error the factory is left as it was.
func (f *Factory) LoadTypeFile(path string) error {
	if !f.loading.CAS(false, true) {
		return ErrConcurrentLoad
	}
	defer f.loading.Store(false)

	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read type file %s", path)
	}
	return f.load(path, src)
}

// Load is LoadTypeFile for definitions already in memory.
func (f *Factory) Load(src []byte) error {
	if !f.loading.CAS(false, true) {
		return ErrConcurrentLoad
	}
	defer f.loading.Store(false)

	return f.load("<memory>", src)
}

func (f *Factory) load(name string, src []byte) error {
	key := schema.Fingerprint(f.profile, src, f.set)
	if s, ok := f.cache.get(key, src, f.set); ok {
		cacheHits.Inc()
		f.log.Debug("type file served from cache",
			zap.String("source", name),
			zap.Uint64("fingerprint", key))
		f.set = s
		return nil
	}

	s, err := schema.Load(f.profile, src, f.set)
	if err != nil {
		return errors.Wrapf(err, "failed to load types from %s", name)
	}
	schemaLoads.Inc()
	f.cache.add(key, src, f.set, s)
	f.log.Info("type file loaded",
		zap.String("source", name),
		zap.Stringer("target", f.profile),
		zap.Int("types", s.Len()))
	f.set = s
	return nil
}

// Create returns an empty instance of the named type.
func (f *Factory) Create(typeName string) (*value.Tree, error) {
	t, err := f.lookup(typeName)
	if err != nil {
		return nil, err
	}
	return value.New(t), nil
}

// GetSize returns the fixed-size portion of the named type. Trailing
// bytes contribute nothing, the caller adds the instance's actual length.
func (f *Factory) GetSize(typeName string) (int, error) {
	t, err := f.lookup(typeName)
	if err != nil {
		return 0, err
	}
	return t.FixedSize(), nil
}

// Types returns the names of all loaded types in sorted order.
func (f *Factory) Types() []string {
	return f.set.Names()
}

// Set returns the loaded schema set, nil if nothing is loaded.
func (f *Factory) Set() *schema.Set {
	return f.set
}

func (f *Factory) lookup(typeName string) (*schema.Type, error) {
	t, ok := f.set.Type(typeName)
	if !ok {
		return nil, &schema.Error{Type: typeName, Reason: "type is not loaded"}
	}
	return t, nil
}
