package object_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/gosles/slcore/pkg/object"
)

func TestLoggerConcurrentReplace(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				object.SetLogger(zap.NewNop())
				object.Logger().Debug("spin")
			}
		}()
	}
	wg.Wait()

	object.SetLogger(nil)
	assert.NotNil(t, object.Logger(), "nil replacement falls back to no-op")
}
