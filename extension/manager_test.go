package extension_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolink/gantry/catalog"
	"github.com/toolink/gantry/extension"
)

const testNamespace = "gantry.test"

// echoPlugin returns a factory whose result records the arguments it was
// invoked with.
func echoPlugin(name string) extension.CallableFunc {
	return func(args ...any) (any, error) {
		return fmt.Sprintf("%s%v", name, args), nil
	}
}

func registerEcho(t *testing.T, reg *catalog.Registry, names ...string) {
	t.Helper()
	for _, name := range names {
		name := name
		require.NoError(t, reg.Register(testNamespace, name, func() (any, error) {
			return echoPlugin(name), nil
		}))
	}
}

// staticCatalog returns whatever candidates it was built with, duplicates
// included, which the Registry would refuse to hold.
type staticCatalog []catalog.Candidate

func (s staticCatalog) Resolve(context.Context, string) ([]catalog.Candidate, error) {
	return s, nil
}

type failingCatalog struct{ err error }

func (f failingCatalog) Resolve(context.Context, string) ([]catalog.Candidate, error) {
	return nil, f.err
}

func TestNewLoadsAllCandidates(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1", "t2")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, m.Names())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, testNamespace, m.Namespace())

	ext, err := m.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", ext.Name)
	assert.NotNil(t, ext.Plugin)
	assert.Nil(t, ext.Obj, "Obj stays nil without invoke-on-load")
}

func TestNewInvokeOnLoad(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1")

	m, err := extension.New(context.Background(), reg, testNamespace, extension.WithInvoke("a", 2))
	require.NoError(t, err)

	ext, err := m.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "t1[a 2]", ext.Obj)
}

func TestGetIdentityStable(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)

	first, err := m.Get("t1")
	require.NoError(t, err)
	second, err := m.Get("t1")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetUnknownName(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)

	_, err = m.Get("no-such-extension")
	require.ErrorIs(t, err, extension.ErrNotFound)
}

func TestLoadFailureIsolatedAndReported(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "good")
	loadErr := errors.New("boom")
	require.NoError(t, reg.Register(testNamespace, "bad", func() (any, error) {
		return nil, loadErr
	}))
	registerEcho(t, reg, "also-good")

	var failedName string
	var failedErr error
	m, err := extension.New(context.Background(), reg, testNamespace,
		extension.WithLoadFailureHandler(func(_ *extension.Manager, name string, err error) {
			failedName = name
			failedErr = err
		}))
	require.NoError(t, err)

	assert.Equal(t, []string{"good", "also-good"}, m.Names())
	assert.Equal(t, "bad", failedName)
	assert.ErrorIs(t, failedErr, loadErr)

	_, err = m.Get("bad")
	assert.ErrorIs(t, err, extension.ErrNotFound, "discarded candidate is absent, never half-present")
}

func TestLoadPanicIsolated(t *testing.T) {
	reg := catalog.NewRegistry()
	require.NoError(t, reg.Register(testNamespace, "panicky", func() (any, error) {
		panic("assertion failed")
	}))
	registerEcho(t, reg, "good")

	var failed []string
	m, err := extension.New(context.Background(), reg, testNamespace,
		extension.WithLoadFailureHandler(func(_ *extension.Manager, name string, _ error) {
			failed = append(failed, name)
		}))
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, m.Names())
	assert.Equal(t, []string{"panicky"}, failed)
}

func TestInvokeFailureIsolated(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "good")
	require.NoError(t, reg.Register(testNamespace, "bad-factory", func() (any, error) {
		return extension.CallableFunc(func(...any) (any, error) {
			return nil, errors.New("instantiate failed")
		}), nil
	}))

	m, err := extension.New(context.Background(), reg, testNamespace, extension.WithInvoke())
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, m.Names())
}

func TestLoadErrorFatalOption(t *testing.T) {
	reg := catalog.NewRegistry()
	loadErr := errors.New("boom")
	require.NoError(t, reg.Register(testNamespace, "bad", func() (any, error) {
		return nil, loadErr
	}))

	_, err := extension.New(context.Background(), reg, testNamespace, extension.WithLoadErrorFatal())
	require.ErrorIs(t, err, loadErr)
}

func TestDuplicateLoadedNameIsConstructionError(t *testing.T) {
	cat := staticCatalog{
		{Name: "dup", Load: func() (any, error) { return echoPlugin("a"), nil }},
		{Name: "dup", Load: func() (any, error) { return echoPlugin("b"), nil }},
	}

	_, err := extension.New(context.Background(), cat, testNamespace)
	require.ErrorIs(t, err, extension.ErrDuplicateName)
}

func TestResolutionFailureIsFatal(t *testing.T) {
	discoveryErr := errors.New("scan failed")
	_, err := extension.New(context.Background(), failingCatalog{err: discoveryErr}, testNamespace)
	require.ErrorIs(t, err, discoveryErr)
}

func TestEmptyNamespaceConstructsEmptyManager(t *testing.T) {
	m, err := extension.New(context.Background(), catalog.NewRegistry(), "empty.namespace")
	require.NoError(t, err)
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Names())

	results, err := m.Map(func(*extension.Extension, ...any) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapCollectsResultsInOrder(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1", "t2", "t3")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)

	results, err := m.Map(func(ext *extension.Extension, args ...any) (any, error) {
		return ext.Name, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"t1", "t2", "t3"}, results)
}

func TestMapForwardsArguments(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)

	results, err := m.Map(func(ext *extension.Extension, args ...any) (any, error) {
		return extension.Invoke(ext.Plugin, args...)
	}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{"t1[1 2]"}, results)
}

func TestMapIsolatesFailuresByDefault(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1", "t2", "t3")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)

	results, err := m.Map(func(ext *extension.Extension, args ...any) (any, error) {
		if ext.Name == "t2" {
			return nil, errors.New("boom")
		}
		return ext.Name, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"t1", "t3"}, results, "failed invocation is omitted, not replaced by a placeholder")
}

func TestMapPropagatesAndStopsEarly(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1", "t2", "t3")

	m, err := extension.New(context.Background(), reg, testNamespace, extension.WithPropagateMapErrors())
	require.NoError(t, err)

	boom := errors.New("boom")
	var visited []string
	_, err = m.Map(func(ext *extension.Extension, args ...any) (any, error) {
		visited = append(visited, ext.Name)
		if ext.Name == "t2" {
			return nil, boom
		}
		return ext.Name, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"t1", "t2"}, visited, "no extension after the failing one is invoked")
}

func TestExtensionsReturnsCopy(t *testing.T) {
	reg := catalog.NewRegistry()
	registerEcho(t, reg, "t1", "t2")

	m, err := extension.New(context.Background(), reg, testNamespace)
	require.NoError(t, err)

	exts := m.Extensions()
	require.Len(t, exts, 2)
	exts[0] = nil
	assert.Equal(t, []string{"t1", "t2"}, m.Names())
}

func TestInvokeRejectsNonCallable(t *testing.T) {
	_, err := extension.Invoke(42)
	require.ErrorIs(t, err, extension.ErrNotCallable)
}
