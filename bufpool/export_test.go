package bufpool

var SelectBucketIndex = selectBucketIndex

func (p *Pool) BucketCount() int {
	return len(p.buckets)
}

// Availableは、長さ length のバケットに格納されているバッファ数を返却します。
func (p *Pool) Available(length int) int {
	return p.buckets[selectBucketIndex(length)].available()
}
