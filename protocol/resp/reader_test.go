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
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestReaderReadLine(t *testing.T) {
	r := NewReaderSize(strings.NewReader("+OK\r\n:123\r\n"), 8)

	line, err := r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "+OK", string(line))

	line, err = r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, ":123", string(line))

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReaderReadLineSplitCRLF(t *testing.T) {
	// 底层每次只吐出一个字节 CRLF 必然被拆到两次读取中
	r := NewReaderSize(iotest.OneByteReader(strings.NewReader("+hello\r\n+world\r\n")), 4)

	line, err := r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "+hello", string(line))

	line, err = r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "+world", string(line))
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReaderSize(iotest.OneByteReader(strings.NewReader("foobar\r\nrest")), 4)

	b, err := r.ReadBytes(8)
	assert.NoError(t, err)
	assert.Equal(t, "foobar\r\n", string(b))

	b, err = r.ReadBytes(4)
	assert.NoError(t, err)
	assert.Equal(t, "rest", string(b))

	_, err = r.ReadBytes(1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReaderShortRead(t *testing.T) {
	r := NewReaderSize(strings.NewReader("abc"), 4)

	_, err := r.ReadBytes(10)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReaderCarryOver(t *testing.T) {
	// ReadLine 之后多余的字节保留 供后续 ReadBytes 使用
	r := NewReaderSize(strings.NewReader("$3\r\nfoo\r\n+next\r\n"), 4)

	line, err := r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "$3", string(line))

	b, err := r.ReadBytes(5)
	assert.NoError(t, err)
	assert.Equal(t, "foo\r\n", string(b))

	line, err = r.ReadLine()
	assert.NoError(t, err)
	assert.Equal(t, "+next", string(line))
}

func TestReaderConnError(t *testing.T) {
	cause := errors.New("broken pipe")
	r := NewReaderSize(iotest.ErrReader(cause), 4)

	_, err := r.ReadLine()
	assert.Error(t, err)

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
	assert.False(t, pe.Recoverable())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Connection error: broken pipe", err.Error())
}
