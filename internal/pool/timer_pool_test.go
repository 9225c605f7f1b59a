package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPool(t *testing.T) {
	t.Run("Get and Put", func(t *testing.T) {
		timer1 := GetTimer(time.Second)
		assert.NotNil(t, timer1)
		PutTimer(timer1)

		timer2 := GetTimer(20 * time.Millisecond)
		assert.NotNil(t, timer2)
		<-timer2.C
	})

	t.Run("Put Active Timer", func(t *testing.T) {
		timer1 := GetTimer(100 * time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		PutTimer(timer1)

		begin := time.Now()
		timer2 := GetTimer(300 * time.Millisecond)
		select {
		case fired := <-timer2.C:
			assert.GreaterOrEqual(t, fired.Sub(begin), 270*time.Millisecond)
		case <-time.After(400 * time.Millisecond):
			t.Error("timer2 should have fired within 400ms")
		}
	})

	t.Run("Concurrency", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				timer := GetTimer(10 * time.Millisecond)
				defer PutTimer(timer)
				<-timer.C
			}()
		}
		wg.Wait()
	})
}

func TestWait(t *testing.T) {
	ctx := context.Background()

	t.Run("Expired", func(t *testing.T) {
		begin := time.Now()
		assert.Equal(t, Expired, Wait(ctx, 30*time.Millisecond, nil))
		assert.GreaterOrEqual(t, time.Since(begin), 25*time.Millisecond)
	})

	t.Run("Woken", func(t *testing.T) {
		wake := make(chan struct{}, 1)
		wake <- struct{}{}
		assert.Equal(t, Woken, Wait(ctx, time.Hour, wake))
	})

	t.Run("Woken without deadline", func(t *testing.T) {
		wake := make(chan struct{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(wake)
		}()
		assert.Equal(t, Woken, Wait(ctx, -1, wake))
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Equal(t, Canceled, Wait(cctx, -1, nil))
	})
}
