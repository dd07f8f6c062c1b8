/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageRequestDefaults(t *testing.T) {
	req := NewOffsetPageRequest(-5, 0)
	require.Equal(t, 0, req.GetOffset())
	require.Equal(t, DefaultPageSize, req.GetPageSize())
	require.Equal(t, 1, req.GetPage())
}

func TestPageRequestFromPageNumber(t *testing.T) {
	req := NewPageRequest(3, 4)
	require.Equal(t, 8, req.GetOffset())
	require.Equal(t, 3, req.GetPage())

	req = NewPageRequest(0, 4)
	require.Equal(t, 0, req.GetOffset())
}

func TestPageRequestCopies(t *testing.T) {
	base := NewOffsetPageRequest(3, 3)
	ordered := base.WithOrders("m.age DESC")
	filtered := ordered.WithFilter(NewQueryFilter("m.age > ?", 10))

	require.Empty(t, base.GetOrders())
	require.Nil(t, base.GetFilter())
	require.Equal(t, []string{"m.age DESC"}, filtered.GetOrders())
	require.Equal(t, "m.age > ?", filtered.GetFilter().Schema)
	require.Equal(t, 2, filtered.GetPage())
}

func TestPaginationHelpers(t *testing.T) {
	p := NewDefaultPagination[int](NewOffsetPageRequest(3, 3))
	one := 1
	p.Items = append(p.Items, &one)
	p.Total = 4
	require.Equal(t, 2, p.TotalPages())
	require.False(t, p.HasNext())

	p.Offset = 0
	require.True(t, p.HasNext())

	empty := NewDefaultPagination[int](NewOffsetPageRequest(0, 3))
	require.Equal(t, 0, empty.TotalPages())
}

func TestPageRequestSharedAcrossGoroutines(t *testing.T) {
	var zero PageRequest
	shared := []*PageRequest{NewOffsetPageRequest(-1, -1), &zero}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, req := range shared {
				_ = NewDefaultPagination[int](req)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, DefaultPageSize, zero.GetPageSize())
	require.Equal(t, 0, zero.pageSize)
	require.Equal(t, DefaultPageSize, shared[0].pageSize)
	require.Equal(t, 0, shared[0].offset)
}
