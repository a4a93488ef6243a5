/*
Package bufpool は、長さごとにバケットを分けたバイトバッファのプールを提供するパッケージです。

バケット i は長さ `16 << i` のバッファを保持します。Rentは要求長以上で最小のバケットからバッファを貸し出し、
Returnはバッファを元のバケットへ戻します。各バケットは独立したロックを持ち、バケットをまたぐロックは取りません。
*/
package bufpool

import (
	"math/bits"
	"sync"

	"github.com/aptpod/wsproto-go/errors"
)

/*
Pool のデフォルト値は以下のように定義されています。
*/
const (
	DefaultMaxLength           = 1024 * 1024
	DefaultMaxBuffersPerBucket = 50
)

const (
	minimumLength = 16
	maximumLength = 1 << 30

	// 空きがなかった場合に次のバケットまで探索します。
	maxBucketsToTry = 2
)

var emptyBuffer = []byte{}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Defaultは、デフォルト設定で遅延生成される共有プールを返却します。
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = New(DefaultMaxLength, DefaultMaxBuffersPerBucket)
	})
	return defaultPool
}

// Poolは、長さごとに分割されたバケットでバッファを再利用するプールです。
//
// Poolは複数のゴルーチンから同時に使用できます。
type Pool struct {
	buckets             []*bucket
	maxBuffersPerBucket int
}

// Newは、Poolを返却します。
//
// maxLength は [16, 1<<30] の範囲に丸められます。
// maxBuffersPerBucket が0以下の場合は DefaultMaxBuffersPerBucket を使用します。
func New(maxLength, maxBuffersPerBucket int) *Pool {
	if maxLength > maximumLength {
		maxLength = maximumLength
	} else if maxLength < minimumLength {
		maxLength = minimumLength
	}
	if maxBuffersPerBucket <= 0 {
		maxBuffersPerBucket = DefaultMaxBuffersPerBucket
	}

	buckets := make([]*bucket, selectBucketIndex(maxLength)+1)
	for i := range buckets {
		buckets[i] = newBucket(bucketLength(i), maxBuffersPerBucket)
	}
	return &Pool{
		buckets:             buckets,
		maxBuffersPerBucket: maxBuffersPerBucket,
	}
}

// Rentは、長さが minLength 以上のバッファを貸し出します。
//
// 返却されるバッファの長さはバケットの長さであり、 minLength より長い場合があります。
// minLength が最大バケットを超える場合は、プールに属さない長さ minLength のバッファを返却します。
// minLength が0の場合は共有の空バッファを返却します。
func (p *Pool) Rent(minLength int) []byte {
	if minLength < 0 {
		panic("bufpool: negative length")
	}
	if minLength == 0 {
		return emptyBuffer
	}

	idx := selectBucketIndex(minLength)
	if idx >= len(p.buckets) {
		return make([]byte, minLength)
	}
	for i := idx; i < len(p.buckets) && i < idx+maxBucketsToTry; i++ {
		if buf := p.buckets[i].rent(); buf != nil {
			return buf
		}
	}
	return make([]byte, p.buckets[idx].length)
}

// Returnは、Rentで貸し出されたバッファをプールへ返却します。
//
// バケットはバッファのキャパシティで決定します。
// 最大バケットより大きいバッファと、空きのないバケットへのバッファは破棄します。
// いずれのバケットの長さとも一致しない場合は ErrBufferNotFromPool を返却します。
func (p *Pool) Return(buf []byte) error {
	c := cap(buf)
	if c == 0 {
		return nil
	}
	idx := selectBucketIndex(c)
	if idx >= len(p.buckets) {
		return nil
	}
	return p.buckets[idx].release(buf[:c])
}

// MaxLengthは、最大バケットのバッファ長を返却します。
func (p *Pool) MaxLength() int {
	return p.buckets[len(p.buckets)-1].length
}

// MaxBuffersPerBucketは、バケットごとに保持するバッファの最大数を返却します。
func (p *Pool) MaxBuffersPerBucket() int {
	return p.maxBuffersPerBucket
}

func selectBucketIndex(length int) int {
	return bits.Len(uint(length-1) >> 4)
}

func bucketLength(idx int) int {
	return minimumLength << idx
}

func errLengthMismatch(got, want int) error {
	return errors.Errorf("length %d does not match bucket length %d: %w", got, want, errors.ErrBufferNotFromPool)
}
