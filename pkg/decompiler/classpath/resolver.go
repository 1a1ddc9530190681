package classpath

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wavesplatform/godecompiler/pkg/util/fifo_cache"
)

const defaultCacheSize = 4096

// MethodRef identifies a resolved method and the class declaring it.
type MethodRef struct {
	Owner      string
	Name       string
	Descriptor string
	Static     bool
}

type ResolverOption func(*Resolver)

func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithCacheSize(size int) ResolverOption {
	return func(r *Resolver) {
		r.cache = fifo_cache.New[string, *MethodRef](size)
	}
}

// Resolver looks up public methods, including inherited ones, and caches
// every answer by signature. It is safe for concurrent use.
type Resolver struct {
	provider Provider
	logger   *zap.Logger

	mu    sync.Mutex
	cache *fifo_cache.FIFOCache[string, *MethodRef]
}

func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider: provider,
		logger:   zap.NewNop(),
		cache:    fifo_cache.New[string, *MethodRef](defaultCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindMethod returns the public method with exactly the given name and
// descriptor declared by the class, its superclasses or its interfaces.
// Any resolution problem is reported as a miss.
func (r *Resolver) FindMethod(className, methodName, descriptor string) (*MethodRef, bool) {
	key := signature(className, methodName, descriptor)
	r.mu.Lock()
	ref, cached := r.cache.Get(key)
	r.mu.Unlock()
	if cached {
		return ref, ref != nil
	}

	ref, err := r.resolve(className, methodName, descriptor)
	if err != nil {
		r.logger.Debug("Method resolution failed",
			zap.String("class", className), zap.String("method", methodName),
			zap.String("descriptor", descriptor), zap.Error(err))
		ref = nil
	}

	r.mu.Lock()
	r.cache.Add2(key, ref)
	r.mu.Unlock()
	return ref, ref != nil
}

// signature joins the lookup parts with a dot, which appears neither in
// internal class names nor in method names.
func signature(className, methodName, descriptor string) string {
	return className + "." + methodName + descriptor
}

func (r *Resolver) resolve(className, methodName, descriptor string) (*MethodRef, error) {
	if _, err := ParseDescriptor(descriptor); err != nil {
		return nil, err
	}
	if _, ok := r.provider.Class(className); !ok {
		return nil, errors.Errorf("class %q not found", className)
	}
	visited := make(map[string]struct{})
	// Superclass chain first, then interfaces of every class in the chain.
	var chain []*Class
	for name := className; name != ""; {
		if _, ok := visited[name]; ok {
			return nil, errors.Errorf("cyclic class hierarchy at %q", name)
		}
		visited[name] = struct{}{}
		c, ok := r.provider.Class(name)
		if !ok {
			return nil, errors.Errorf("class %q not found", name)
		}
		if m, ok := declared(c, methodName, descriptor); ok {
			return m, nil
		}
		chain = append(chain, c)
		name = c.Super
	}
	queue := make([]string, 0)
	for _, c := range chain {
		queue = append(queue, c.Interfaces...)
	}
	seen := make(map[string]struct{})
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		c, ok := r.provider.Class(name)
		if !ok {
			return nil, errors.Errorf("interface %q not found", name)
		}
		if m, ok := declared(c, methodName, descriptor); ok {
			return m, nil
		}
		queue = append(queue, c.Interfaces...)
	}
	return nil, nil
}

func declared(c *Class, name, descriptor string) (*MethodRef, bool) {
	for _, m := range c.Methods {
		if m.Public && m.Name == name && m.Descriptor == descriptor {
			return &MethodRef{Owner: c.Name, Name: m.Name, Descriptor: m.Descriptor, Static: m.Static}, true
		}
	}
	return nil, false
}

// CacheLen returns the number of cached signatures, misses included.
func (r *Resolver) CacheLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
