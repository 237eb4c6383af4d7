package ordertrack_test

import (
	"sync"
	"testing"

	"github.com/trackpay/ordertrack"
)

func testUniqueness(t *testing.T, genFunc func() string) {
	producers := 100
	idsPerProducer := 10000

	if testing.Short() {
		producers = 10
		idsPerProducer = 1000
	}

	idsCount := producers * idsPerProducer

	ids := make(chan string, idsCount)
	allGenerated := sync.WaitGroup{}
	allGenerated.Add(producers)

	for i := 0; i < producers; i++ {
		go func() {
			for j := 0; j < idsPerProducer; j++ {
				ids <- genFunc()
			}
			allGenerated.Done()
		}()
	}

	uniqueIDs := make(map[string]struct{}, idsCount)

	allGenerated.Wait()
	close(ids)

	for id := range ids {
		if _, ok := uniqueIDs[id]; ok {
			t.Error(id, " has duplicate")
		}
		uniqueIDs[id] = struct{}{}
	}
}

func TestUUID(t *testing.T) {
	testUniqueness(t, ordertrack.NewUUID)
}

func TestShortUUID(t *testing.T) {
	testUniqueness(t, ordertrack.NewShortUUID)
}

func TestULID(t *testing.T) {
	testUniqueness(t, ordertrack.NewULID)
}
