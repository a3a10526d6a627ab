//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/wikidocu/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("replaces the browser after max pages", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(2))
		require.NoError(t, err)
		defer manager.Close()

		first, release, err := manager.Acquire()
		require.NoError(t, err)
		release()
		_, release, err = manager.Acquire()
		require.NoError(t, err)
		release()

		third, release, err := manager.Acquire()
		require.NoError(t, err)
		defer release()

		assert.NotSame(t, first, third)
	})

	t.Run("keeps the browser below max pages", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
		require.NoError(t, err)
		defer manager.Close()

		first, release1, err := manager.Acquire()
		require.NoError(t, err)
		second, release2, err := manager.Acquire()
		require.NoError(t, err)
		release1()
		release2()

		assert.Same(t, first, second)
	})

	t.Run("retired browser serves its open page", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(1))
		require.NoError(t, err)
		defer manager.Close()

		old, releaseOld, err := manager.Acquire()
		require.NoError(t, err)

		fresh, releaseFresh, err := manager.Acquire()
		require.NoError(t, err)
		defer releaseFresh()
		require.NotSame(t, old, fresh)

		_, err = old.Pages()
		assert.NoError(t, err, "retired browser should stay up while a lease is open")
		releaseOld()
		releaseOld()
	})

	t.Run("fails after close", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager()
		require.NoError(t, err)
		require.NoError(t, manager.Close())
		require.NoError(t, manager.Close())

		_, _, err = manager.Acquire()
		assert.ErrorIs(t, err, rod.ErrClosed)
		assert.Zero(t, manager.LauncherPID())
	})
}
