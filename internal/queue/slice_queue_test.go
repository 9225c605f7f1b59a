package queue

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	id string
}

func TestSliceQueue(t *testing.T) {
	assert := assert.New(t)

	t.Run("Empty Queue", func(t *testing.T) {
		q := NewSliceQueue[*item](1)

		assert.True(q.IsEmpty())
		assert.Equal(0, q.Length())
		v, ok := q.Dequeue()
		assert.False(ok)
		assert.Nil(v)
		_, ok = q.Peek()
		assert.False(ok)
	})

	t.Run("Enqueue and Dequeue", func(t *testing.T) {
		q := NewSliceQueue[*item](1)

		a, b := &item{"a"}, &item{"b"}
		q.Enqueue(a)
		q.Enqueue(b)
		assert.Equal(2, q.Length())

		v, ok := q.Dequeue()
		assert.True(ok)
		assert.Same(a, v)

		v, ok = q.Peek()
		assert.True(ok)
		assert.Same(b, v)
		assert.Equal(1, q.Length())

		v, _ = q.Dequeue()
		assert.Same(b, v)
		assert.True(q.IsEmpty())
	})

	t.Run("Remove", func(t *testing.T) {
		q := NewSliceQueue[int](4)
		for i := range 6 {
			q.Enqueue(i)
		}

		removed := q.Remove(func(v int) bool { return v%2 == 0 })
		assert.Equal(3, removed)
		assert.Equal(3, q.Length())

		for _, want := range []int{1, 3, 5} {
			v, ok := q.Dequeue()
			assert.True(ok)
			assert.Equal(want, v)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		q := NewSliceQueue[int](2)
		q.Enqueue(1)
		q.Enqueue(2)
		q.Reset()
		assert.True(q.IsEmpty())
	})

	t.Run("Concurrency", func(t *testing.T) {
		var mu sync.Mutex
		q := NewSliceQueue[*item](1)

		var wg sync.WaitGroup
		for i := range 1000 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				mu.Lock()
				q.Enqueue(&item{strconv.Itoa(i)})
				mu.Unlock()
			}(i)
		}
		wg.Wait()
		assert.Equal(1000, q.Length())

		wg.Add(1000)
		for range 1000 {
			go func() {
				defer wg.Done()
				mu.Lock()
				q.Dequeue()
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.True(q.IsEmpty())
	})
}
