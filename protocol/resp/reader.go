// Copyright 2025 The kiwid Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resp

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/kiwid/kiwid/common"
)

// ByteReader 为解码器提供字节流读取能力
//
// 两个方法返回的切片引用内部缓冲区 仅在下一次调用前有效
// 调用方如需持有数据必须自行拷贝
type ByteReader interface {
	// ReadLine 读取并消费到下一个 CRLF 为止的字节 不含终止符
	// 在找到 CRLF 之前遇到 EOF 返回 ErrClosed
	ReadLine() ([]byte, error)

	// ReadBytes 精确读取 n 个字节 短读返回 ErrClosed
	ReadBytes(n int) ([]byte, error)
}

// Reader 带缓冲的 ByteReader 实现
//
// 从底层 io.Reader 分块读入 仅在现有数据不足时才触发下一次底层读取
// 单次底层读取最多 common.ReadChunkSize 字节 CRLF 允许跨块出现
// 多余的字节保留在缓冲区 供下一个帧使用 (pipelining)
type Reader struct {
	r     io.Reader
	buf   []byte
	off   int
	chunk []byte
}

// NewReader 创建并返回 *Reader 实例 初始缓冲容量为 common.ReadBufferSize
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, common.ReadBufferSize)
}

// NewReaderSize 创建指定初始缓冲容量的 *Reader 实例
func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{
		r:     r,
		buf:   make([]byte, 0, size),
		chunk: make([]byte, common.ReadChunkSize),
	}
}

// ReadLine 实现 ByteReader ReadLine
func (r *Reader) ReadLine() ([]byte, error) {
	// scanned 为相对 r.off 的已扫描偏移 fill 复位缓冲区时依旧有效
	var scanned int
	for {
		if i := bytes.Index(r.buf[r.off+scanned:], charCRLF); i >= 0 {
			end := r.off + scanned + i
			line := r.buf[r.off:end]
			r.off = end + 2
			return line, nil
		}

		// 已扫描过的字节无需重复扫描 回退 1 字节覆盖跨块的 CR
		scanned = len(r.buf) - r.off - 1
		if scanned < 0 {
			scanned = 0
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

// ReadBytes 实现 ByteReader ReadBytes
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	for len(r.buf)-r.off < n {
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// fill 从底层读取至少一个字节追加到缓冲区
//
// 缓冲区已被消费殆尽时先复位 避免无限增长
func (r *Reader) fill() error {
	if r.off == len(r.buf) {
		r.buf = r.buf[:0]
		r.off = 0
	}

	for {
		n, err := r.r.Read(r.chunk)
		if n > 0 {
			r.buf = append(r.buf, r.chunk[:n]...)
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrClosed
			}
			return newConnError(err)
		}
	}
}
