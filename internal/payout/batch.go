package payout

import (
	"context"
	"sync"
)

// BatchItem pairs one request with its outcome. Err carries the message of an
// infrastructure fault; business failures land in Result like the single
// call.
type BatchItem struct {
	Request PayRequest
	Result  Result
	Err     string
}

// PayBatch runs PayJob for every request and collects per-item outcomes. One
// item's failure never aborts the rest. Concurrency below two runs the batch
// sequentially; anything higher bounds the number of in-flight payouts.
func (c *Coordinator) PayBatch(ctx context.Context, reqs []PayRequest, concurrency int) []BatchItem {
	items := make([]BatchItem, len(reqs))

	if concurrency < 2 || len(reqs) < 2 {
		for i, req := range reqs {
			items[i] = c.payItem(ctx, req)
		}
		return items
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req PayRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			items[i] = c.payItem(ctx, req)
		}(i, req)
	}
	wg.Wait()

	return items
}

func (c *Coordinator) payItem(ctx context.Context, req PayRequest) BatchItem {
	res, err := c.PayJob(ctx, req)
	item := BatchItem{Request: req, Result: res}
	if err != nil {
		item.Err = err.Error()
	}
	return item
}
