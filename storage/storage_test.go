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

package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiwid/kiwid/common"
)

func TestStorageSetGet(t *testing.T) {
	s, err := New(common.NewOptions())
	assert.NoError(t, err)

	_, ok := s.Get([]byte("key1"))
	assert.False(t, ok)

	s.Set([]byte("key1"), []byte("value1"))
	b, ok := s.Get([]byte("key1"))
	assert.True(t, ok)
	assert.Equal(t, "value1", string(b))

	// 无条件覆盖
	s.Set([]byte("key1"), []byte("value2"))
	b, ok = s.Get([]byte("key1"))
	assert.True(t, ok)
	assert.Equal(t, "value2", string(b))

	assert.Equal(t, 1, s.Len())
}

func TestStorageShardsOption(t *testing.T) {
	opts := common.NewOptions()
	opts.Merge("shards", "3") // cast 兼容字符串数值 向上取整至 4

	s, err := New(opts)
	assert.NoError(t, err)
	assert.Len(t, s.shards, 4)
	assert.Equal(t, uint64(3), s.mask)
}

func TestStorageInvalidShardsOption(t *testing.T) {
	opts := common.NewOptions()
	opts.Merge("shards", "not-a-number")

	_, err := New(opts)
	assert.Error(t, err)
}

func TestStorageConcurrency(t *testing.T) {
	s, err := New(common.NewOptions())
	assert.NoError(t, err)

	const (
		workers = 8
		keys    = 200
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keys; i++ {
				key := fmt.Sprintf("key-%d", i)
				s.Set([]byte(key), []byte(fmt.Sprintf("value-%d-%d", w, i)))
				_, _ = s.Get([]byte(key))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, keys, s.Len())
}
