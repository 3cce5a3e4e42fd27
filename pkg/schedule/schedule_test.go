package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New()
	assert.Error(t, s.Add("bad", "not a cron", func(context.Context) {}))
	assert.Empty(t, s.List())
}

func TestListSorted(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("b", "@hourly", func(context.Context) {}))
	require.NoError(t, s.Add("a", "*/5 * * * *", func(context.Context) {}))
	assert.Equal(t, []string{"a  [*/5 * * * *]", "b  [@hourly]"}, s.List())
}

func TestRunsAndStops(t *testing.T) {
	s := New()
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("task never ran")
	}

	<-s.Stop().Done()
}

func TestPanicIsRecovered(t *testing.T) {
	s := New()
	done := make(chan struct{})
	var once sync.Once
	require.NoError(t, s.Add("boom", "@every 1s", func(context.Context) {
		defer once.Do(func() { close(done) })
		panic("boom")
	}))
	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("task never ran")
	}
}
