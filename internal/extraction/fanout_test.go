package extraction

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
)

func TestRewriteAllSuccess(t *testing.T) {
	var mu sync.Mutex
	var seen []constants.Mode
	r := rewrite.RewriterFunc(func(_ context.Context, mode constants.Mode, content string) (string, error) {
		mu.Lock()
		seen = append(seen, mode)
		mu.Unlock()
		return string(mode) + ":" + content, nil
	})

	results, failed := RewriteAll(context.Background(), r, "base", constants.RewriteModes(), 0, nil)
	assert.Empty(t, failed)
	assert.Len(t, results, 4)
	for _, m := range constants.RewriteModes() {
		assert.Equal(t, string(m)+":base", results[m])
	}
	assert.ElementsMatch(t, constants.RewriteModes(), seen)
}

func TestRewriteAllIsolatesFailures(t *testing.T) {
	r := rewrite.RewriterFunc(func(_ context.Context, mode constants.Mode, content string) (string, error) {
		switch mode {
		case constants.ModeZod:
			return "", errors.New("502 from proxy")
		case constants.ModeJSON:
			// slow mode still lands
			time.Sleep(20 * time.Millisecond)
		}
		return "ok-" + string(mode), nil
	})

	results, failed := RewriteAll(context.Background(), r, "base", constants.RewriteModes(), 0, nil)
	assert.Equal(t, map[constants.Mode]struct{}{constants.ModeZod: {}}, failed)
	assert.NotContains(t, results, constants.ModeZod)
	assert.Equal(t, "ok-json", results[constants.ModeJSON])
	assert.Equal(t, "ok-plain", results[constants.ModePlain])
	assert.Equal(t, "ok-pydantic", results[constants.ModePydantic])
}

func TestRewriteAllRespectsLimit(t *testing.T) {
	var inFlight, peak int32
	r := rewrite.RewriterFunc(func(context.Context, constants.Mode, string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "x", nil
	})

	results, failed := RewriteAll(context.Background(), r, "base", constants.RewriteModes(), 1, nil)
	assert.Len(t, results, 4)
	assert.Empty(t, failed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestRewriteAllPassthroughAndDuplicates(t *testing.T) {
	var calls int32
	r := rewrite.RewriterFunc(func(context.Context, constants.Mode, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "plain", nil
	})

	modes := []constants.Mode{constants.ModeMarkdown, constants.ModePlain, constants.ModePlain}
	results, failed := RewriteAll(context.Background(), r, "# base", modes, 0, nil)
	assert.Empty(t, failed)
	assert.Equal(t, "# base", results[constants.ModeMarkdown])
	assert.Equal(t, "plain", results[constants.ModePlain])
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
