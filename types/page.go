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

// DefaultPageSize is used when a request carries a page size below one.
const DefaultPageSize = 10

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest is a row window (offset + page size) with optional filter and
// ordering. Offsets are absolute row indexes, not page numbers.
type PageRequest struct {
	offset   int
	pageSize int
	filter   *QueryFilter
	orders   []string // "m.age DESC", "m.username ASC"
}

// GetPageSize never writes to p, so a request can be shared between
// goroutines.
func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		return DefaultPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetOffset() int {
	if p.offset < 0 {
		return 0
	}
	return p.offset
}

// GetPage returns the 1-based page number the offset falls into.
func (p *PageRequest) GetPage() int {
	return p.GetOffset()/p.GetPageSize() + 1
}

func (p *PageRequest) GetFilter() *QueryFilter {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

// WithFilter returns a copy of the request restricted by filter.
func (p *PageRequest) WithFilter(filter *QueryFilter) *PageRequest {
	c := *p
	c.filter = filter
	return &c
}

// WithOrders returns a copy of the request with the given ordering.
func (p *PageRequest) WithOrders(orders ...string) *PageRequest {
	c := *p
	c.orders = append([]string(nil), orders...)
	return &c
}

// NewPageRequest builds a request from a 1-based page number.
func NewPageRequest(page int, pageSize int) *PageRequest {
	if page < 1 {
		page = 1
	}
	size := normalizePageSize(pageSize)
	return &PageRequest{offset: (page - 1) * size, pageSize: size, orders: make([]string, 0)}
}

// NewOffsetPageRequest builds a request from an absolute row offset.
func NewOffsetPageRequest(offset int, pageSize int) *PageRequest {
	if offset < 0 {
		offset = 0
	}
	return &PageRequest{offset: offset, pageSize: normalizePageSize(pageSize), orders: make([]string, 0)}
}

func normalizePageSize(size int) int {
	if size < 1 {
		return DefaultPageSize
	}
	return size
}

// Pagination holds paged result items along with pagination metadata.
// CountExecuted reports whether Total came from a count query or was
// derived from the fetched page.
type Pagination[T any] struct {
	Page          int
	PageSize      int
	Offset        int
	Total         int
	Items         []*T
	CountExecuted bool
}

// NewDefaultPagination constructs an empty pagination container for req.
func NewDefaultPagination[T any](req *PageRequest) *Pagination[T] {
	return &Pagination[T]{
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Offset:   req.GetOffset(),
		Items:    make([]*T, 0),
	}
}

// TotalPages returns the number of pages needed for Total rows.
func (p *Pagination[T]) TotalPages() int {
	if p.PageSize < 1 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether rows exist past this page.
func (p *Pagination[T]) HasNext() bool {
	return p.Offset+len(p.Items) < p.Total
}
