package bufpool

import "sync"

type bucket struct {
	mu     sync.Mutex
	length int
	slots  [][]byte
	index  int
}

func newBucket(length, numberOfBuffers int) *bucket {
	return &bucket{
		length: length,
		slots:  make([][]byte, numberOfBuffers),
	}
}

// rentは、空きスロットがなければnilを返却します。
func (b *bucket) rent() []byte {
	var (
		buf      []byte
		allocate bool
	)
	b.mu.Lock()
	if b.index < len(b.slots) {
		buf = b.slots[b.index]
		b.slots[b.index] = nil
		b.index++
		allocate = buf == nil
	}
	b.mu.Unlock()

	if allocate {
		buf = make([]byte, b.length)
	}
	return buf
}

func (b *bucket) release(buf []byte) error {
	if len(buf) != b.length {
		return errLengthMismatch(len(buf), b.length)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index != 0 {
		b.index--
		b.slots[b.index] = buf
	}
	return nil
}

func (b *bucket) available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int
	for _, s := range b.slots[b.index:] {
		if s != nil {
			n++
		}
	}
	return n
}
