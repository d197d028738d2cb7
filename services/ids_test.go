package services_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdbackup/services"
)

func TestIDGeneratorStartsAtOffset(t *testing.T) {
	gen := services.NewIDGenerator(1000)
	assert.Equal(t, int64(1001), gen.Next(services.KindAccount))
	assert.Equal(t, int64(1002), gen.Next(services.KindAccount))

	// Typen zählen unabhängig voneinander.
	assert.Equal(t, int64(1001), gen.Next(services.KindArticle))
	assert.Equal(t, int64(1001), gen.Next(services.KindAuthor))
}

func TestIDGeneratorConcurrentNextIsGapless(t *testing.T) {
	const workers = 8
	const perWorker = 250

	gen := services.NewIDGenerator(0)
	results := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				results <- gen.Next(services.KindFile)
			}
		}()
	}
	wg.Wait()
	close(results)

	ids := make([]int64, 0, workers*perWorker)
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Streng monoton, lückenlos, keine Doppelvergabe.
	require.Len(t, ids, workers*perWorker)
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
	assert.Equal(t, int64(workers*perWorker), gen.Current(services.KindFile))
}

func TestIDGeneratorSet(t *testing.T) {
	gen := services.NewIDGenerator(0)
	gen.Set(services.KindCollection, 500)
	assert.Equal(t, int64(501), gen.Next(services.KindCollection))
}
