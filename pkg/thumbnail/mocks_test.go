package thumbnail

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
	"github.com/dixieflatline76/UltimateThumb/pkg/identity"
	"github.com/dixieflatline76/UltimateThumb/pkg/storage"
)

// MockProber implements Prober for testing
type MockProber struct {
	mock.Mock
}

func (m *MockProber) Size(ctx context.Context, path string) (geometry.Size, error) {
	args := m.Called(path)
	return args.Get(0).(geometry.Size), args.Error(1)
}

// MockRenderer implements Renderer for testing. Successful renders write
// Content to the output file.
type MockRenderer struct {
	mock.Mock
	Content []byte
}

func (m *MockRenderer) Render(ctx context.Context, in, out string, opts geometry.ResizeOptions) error {
	args := m.Called(in, out, opts)
	if err := args.Error(0); err != nil {
		return err
	}
	return os.WriteFile(out, m.Content, 0600)
}

// MockOptimizer implements Optimizer for testing
type MockOptimizer struct {
	mock.Mock
}

func (m *MockOptimizer) Optimize(ctx context.Context, path, quality string) error {
	args := m.Called(path, quality)
	return args.Error(0)
}

type testEnv struct {
	engine    *Engine
	prober    *MockProber
	renderer  *MockRenderer
	optimizer *MockOptimizer
	storage   *storage.FileStorage
	registry  *identity.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := identity.NewMemoryStore(128)
	require.NoError(t, err)
	fs, err := storage.NewFileStorage(t.TempDir(), "/", "")
	require.NoError(t, err)

	env := &testEnv{
		prober:    &MockProber{},
		renderer:  &MockRenderer{Content: []byte("abc")},
		optimizer: &MockOptimizer{},
		storage:   fs,
		registry:  identity.NewRegistry(store, ""),
	}
	env.engine = NewEngine(Deps{
		Registry:  env.registry,
		Prober:    env.prober,
		Renderer:  env.renderer,
		Optimizer: env.optimizer,
		Storage:   fs,
	}, Config{Defaults: DefaultOptions(), Workers: 2})
	return env
}

func sized(w, h int) Options {
	o := DefaultOptions()
	o.Size = geometry.Request(w, h)
	return o
}
