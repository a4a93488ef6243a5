package xio

import "io"

// CaptureReaderは、読み込んだバイト数を記録するReaderです。
type CaptureReader struct {
	ReadBytes int
	io.Reader
}

func NewCaptureReader(rd io.Reader) *CaptureReader {
	return &CaptureReader{
		Reader: rd,
	}
}

func (r *CaptureReader) Read(bs []byte) (int, error) {
	n, err := r.Reader.Read(bs)
	r.ReadBytes += n
	return n, err
}

// CaptureWriterは、書き込んだバイト数を記録するWriterです。
type CaptureWriter struct {
	WrittenBytes int
	io.Writer
}

func NewCaptureWriter(wr io.Writer) *CaptureWriter {
	return &CaptureWriter{
		Writer: wr,
	}
}

func (w *CaptureWriter) Write(bs []byte) (int, error) {
	n, err := w.Writer.Write(bs)
	w.WrittenBytes += n
	return n, err
}
