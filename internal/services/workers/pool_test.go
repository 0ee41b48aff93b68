package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fiscus/internal/common"
)

func TestPool(t *testing.T) {
	t.Run("runs all submitted jobs", func(t *testing.T) {
		pool := NewPool(context.Background(), 3, common.GetLogger())
		pool.Start()

		var ran atomic.Int64
		for i := 0; i < 10; i++ {
			require.NoError(t, pool.Submit(func(ctx context.Context) error {
				ran.Add(1)
				return nil
			}))
		}
		pool.Wait()

		assert.Equal(t, int64(10), ran.Load())
		assert.Empty(t, pool.Errors())
	})

	t.Run("collects errors without failing fast", func(t *testing.T) {
		pool := NewPool(context.Background(), 2, common.GetLogger())
		pool.Start()

		var ran atomic.Int64
		boom := errors.New("boom")
		for i := 0; i < 4; i++ {
			i := i
			require.NoError(t, pool.Submit(func(ctx context.Context) error {
				ran.Add(1)
				if i%2 == 0 {
					return boom
				}
				return nil
			}))
		}
		pool.Wait()

		assert.Equal(t, int64(4), ran.Load(), "later jobs still run after failures")
		assert.Len(t, pool.Errors(), 2)
	})

	t.Run("parent cancellation stops workers", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		pool := NewPool(ctx, 1, common.GetLogger())
		pool.Start()
		cancel()

		// Workers drain via ctx; Shutdown must not hang
		pool.Shutdown()
	})
}
