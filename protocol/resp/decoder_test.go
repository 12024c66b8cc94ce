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
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDecoder(input string) *Decoder {
	return NewDecoder(NewReaderSize(strings.NewReader(input), 64))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{
			name:  "SimpleString",
			input: "+OK\r\n",
			want:  NewSimpleString("OK"),
		},
		{
			name:  "SimpleError",
			input: "-Error message\r\n",
			want:  NewSimpleError("Error message"),
		},
		{
			name:  "Integer",
			input: ":12345\r\n",
			want:  NewInteger(12345),
		},
		{
			name:  "NegativeInteger",
			input: ":-12345\r\n",
			want:  NewInteger(-12345),
		},
		{
			name:  "BulkString",
			input: "$6\r\nfoobar\r\n",
			want:  NewBulkString([]byte("foobar")),
		},
		{
			name:  "EmptyBulkString",
			input: "$0\r\n\r\n",
			want:  NewBulkString(nil),
		},
		{
			name:  "BulkStringWithCRLFPayload",
			input: "$8\r\nfoo\r\nbar\r\n",
			want:  NewBulkString([]byte("foo\r\nbar")),
		},
		{
			name:  "NullBulkString",
			input: "$-1\r\n",
			want:  NewNull(),
		},
		{
			name:  "Null",
			input: "_\r\n",
			want:  NewNull(),
		},
		{
			name:  "BooleanTrue",
			input: "#t\r\n",
			want:  NewBoolean(true),
		},
		{
			name:  "BooleanFalse",
			input: "#f\r\n",
			want:  NewBoolean(false),
		},
		{
			name:  "Double",
			input: ",1.234\r\n",
			want:  NewDouble(1.234),
		},
		{
			name:  "DoubleInf",
			input: ",inf\r\n",
			want:  NewDouble(math.Inf(1)),
		},
		{
			name:  "DoubleNegInf",
			input: ",-inf\r\n",
			want:  NewDouble(math.Inf(-1)),
		},
		{
			name:  "DoubleNaN",
			input: ",nan\r\n",
			want:  NewDouble(math.NaN()),
		},
		{
			name:  "BigNumber",
			input: "(12345678901234567890\r\n",
			want:  NewBigNumber(mustBigInt("12345678901234567890")),
		},
		{
			name:  "NegativeBigNumber",
			input: "(-12345678901234567890\r\n",
			want:  NewBigNumber(mustBigInt("-12345678901234567890")),
		},
		{
			name:  "BulkError",
			input: "!13\r\nError message\r\n",
			want:  NewBulkError([]byte("Error message")),
		},
		{
			name:  "Array",
			input: "*2\r\n$3\r\nfoo\r\n:42\r\n",
			want:  NewArray(NewBulkString([]byte("foo")), NewInteger(42)),
		},
		{
			name:  "EmptyArray",
			input: "*0\r\n",
			want:  NewArray(),
		},
		{
			name:  "NestedArray",
			input: "*2\r\n:1\r\n*2\r\n+two\r\n+three\r\n",
			want: NewArray(
				NewInteger(1),
				NewArray(NewSimpleString("two"), NewSimpleString("three")),
			),
		},
		{
			name:  "Map",
			input: "%2\r\n+key1\r\n:1\r\n+key2\r\n:2\r\n",
			want: NewMap(
				MapEntry{Key: NewSimpleString("key1"), Value: NewInteger(1)},
				MapEntry{Key: NewSimpleString("key2"), Value: NewInteger(2)},
			),
		},
		{
			name:  "EmptyMap",
			input: "%0\r\n",
			want:  NewMap(),
		},
		{
			name:  "MapDuplicateKeyLastWins",
			input: "%2\r\n+k\r\n:1\r\n+k\r\n:2\r\n",
			want:  NewMap(MapEntry{Key: NewSimpleString("k"), Value: NewInteger(2)}),
		},
		{
			name:  "MapWithAggregateKey",
			input: "%1\r\n*1\r\n:1\r\n+v\r\n",
			want: NewMap(
				MapEntry{Key: NewArray(NewInteger(1)), Value: NewSimpleString("v")},
			),
		},
		{
			name:  "Set",
			input: "~3\r\n+one\r\n:2\r\n#t\r\n",
			want:  NewSet(NewSimpleString("one"), NewInteger(2), NewBoolean(true)),
		},
		{
			name:  "SetKeepsDuplicates",
			input: "~2\r\n:1\r\n:1\r\n",
			want:  NewSet(NewInteger(1), NewInteger(1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestDecoder(tt.input).Decode()
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		recoverable bool
	}{
		{
			name:        "ExpectedNumber",
			input:       ":abc\r\n",
			want:        "Expected number, got abc",
			recoverable: true,
		},
		{
			name:        "NegativeArrayLen",
			input:       "*-3\r\n",
			want:        "Expected number, got -3",
			recoverable: true,
		},
		{
			name:        "NegativeBulkErrorLen",
			input:       "!-1\r\n",
			want:        "Expected number, got -1",
			recoverable: true,
		},
		{
			name:        "ExpectedBool",
			input:       "#x\r\n",
			want:        "Expected boolean",
			recoverable: true,
		},
		{
			name:        "EmptyBool",
			input:       "#\r\n",
			want:        "Expected boolean",
			recoverable: true,
		},
		{
			name:        "WrongFloatingPointFormat",
			input:       ",abc\r\n",
			want:        "Wrong floating point format",
			recoverable: true,
		},
		{
			name:        "WrongBigNumberFormat",
			input:       "(abc\r\n",
			want:        "Wrong big number format",
			recoverable: true,
		},
		{
			name:        "MissingSeparator",
			input:       "$3\r\nfoobar\r\n",
			want:        "Missing CRLF separator",
			recoverable: true,
		},
		{
			name:        "UnsupportedDataType",
			input:       "@hello\r\n",
			want:        "Unsupported data type @",
			recoverable: true,
		},
		{
			name:        "WrongStringByteSequence",
			input:       "+\xff\xfe\r\n",
			want:        "Wrong string byte sequence",
			recoverable: true,
		},
		{
			name:        "TruncatedFrame",
			input:       "+OK",
			want:        "Client closed connection",
			recoverable: false,
		},
		{
			name:        "TruncatedBulkPayload",
			input:       "$10\r\nfoo",
			want:        "Client closed connection",
			recoverable: false,
		},
		{
			name:        "TruncatedAggregate",
			input:       "*2\r\n:1\r\n",
			want:        "Client closed connection",
			recoverable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestDecoder(tt.input).Decode()
			assert.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.recoverable, pe.Recoverable())
		})
	}
}

func TestDecodeFraming(t *testing.T) {
	// 两个独立编码的 Value 拼接后应按序解出 互不干扰
	v1 := NewArray(NewBulkString([]byte("GET")), NewBulkString([]byte("key1")))
	v2 := NewMap(MapEntry{Key: NewSimpleString("k"), Value: NewSet(NewInteger(1))})

	input := append(v1.Encode(), v2.Encode()...)
	dec := NewDecoder(NewReaderSize(bytes.NewReader(input), 16))

	got1, err := dec.Decode()
	assert.NoError(t, err)
	assert.True(t, v1.Equal(got1))

	got2, err := dec.Decode()
	assert.NoError(t, err)
	assert.True(t, v2.Equal(got2))

	_, err = dec.Decode()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDecodeRoundTrip(t *testing.T) {
	values := []Value{
		NewSimpleString("hello"),
		NewSimpleError("oops"),
		NewInteger(-9223372036854775808),
		NewBulkString([]byte{0x00, 0xff, 0x0d, 0x0a}),
		NewNull(),
		NewBoolean(true),
		NewDouble(3.14),
		NewDouble(math.NaN()),
		NewBigNumber(mustBigInt("340282366920938463463374607431768211456")),
		NewBulkError([]byte("WRONGTYPE")),
		NewArray(
			NewInteger(1),
			NewSet(NewBoolean(false), NewNull()),
			NewMap(MapEntry{Key: NewInteger(1), Value: NewArray()}),
		),
	}

	for _, v := range values {
		got, err := DecodeBytes(v.Encode())
		assert.NoError(t, err)
		assert.True(t, v.Equal(got))
	}
}

func TestDecodeDeepNesting(t *testing.T) {
	// 恶意构造的深嵌套不允许打穿调用栈
	const depth = 100000
	input := strings.Repeat("*1\r\n", depth) + ":7\r\n"

	v, err := NewDecoder(NewReaderSize(strings.NewReader(input), 1024)).Decode()
	assert.NoError(t, err)

	for i := 0; i < depth; i++ {
		assert.Equal(t, KindArray, v.Kind())
		assert.Len(t, v.Elems(), 1)
		v = v.Elems()[0]
	}
	assert.Equal(t, KindInteger, v.Kind())
	assert.Equal(t, int64(7), v.Integer())
}

func TestDecodeBytesLeftoverIgnored(t *testing.T) {
	v, err := DecodeBytes([]byte(":1\r\n:2\r\n"))
	assert.NoError(t, err)
	assert.True(t, NewInteger(1).Equal(v))
}
