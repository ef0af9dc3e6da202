package web

import (
	"context"

	"github.com/sweeney/plotview/internal/plot"
)

// Result reports what the host loop did with an input.
type Result struct {
	Redraw  plot.Redraw
	Target  *plot.Target // set when a press located a lane
	FrameID string       // frame rendered after the input
}

// Request is one input waiting for the host loop.
type Request struct {
	Input plot.Input
	reply chan Result
}

// Respond hands the loop's result back to the waiting handler.
// It must be called exactly once per received request.
func (r Request) Respond(res Result) {
	r.reply <- res
}

// Queue carries inputs from HTTP handlers to the goroutine that owns the
// view. The view is never touched from handler goroutines.
type Queue struct {
	ch chan Request
}

// NewQueue creates a queue holding up to size unread requests.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Request, size)}
}

// C returns the channel the host loop reads requests from.
func (q *Queue) C() <-chan Request {
	return q.ch
}

// Dispatch sends in to the host loop and waits for its result.
func (q *Queue) Dispatch(ctx context.Context, in plot.Input) (Result, error) {
	req := Request{Input: in, reply: make(chan Result, 1)}
	select {
	case q.ch <- req:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
