package recorder

import (
	"container/list"
	"sync"
)

// peerFIFO holds one ordered queue of in-flight requests per peer
// connection. Recording-mode pipelining means several requests on the
// same keep-alive connection can be in flight before their responses
// arrive; responses come back in the same order their requests were
// sent, so a strict per-peer FIFO is what pairs them correctly.
type peerFIFO struct {
	mu     sync.Mutex
	queues map[string]*list.List
}

func newPeerFIFO() *peerFIFO {
	return &peerFIFO{queues: make(map[string]*list.List)}
}

// push enqueues a pending request for peer.
func (f *peerFIFO) push(peer string, p *pendingRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queues[peer]
	if !ok {
		q = list.New()
		f.queues[peer] = q
	}
	q.PushBack(p)
}

// pop dequeues the oldest pending request for peer, or returns nil if
// none is queued.
func (f *peerFIFO) pop(peer string) *pendingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queues[peer]
	if !ok || q.Len() == 0 {
		return nil
	}
	front := q.Front()
	q.Remove(front)
	if q.Len() == 0 {
		delete(f.queues, peer)
	}
	return front.Value.(*pendingRequest)
}
