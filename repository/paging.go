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

package repository

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/types"
)

// pageQuery builds a fresh content or count query. Each call must return a
// new query so the count and the content never share state.
type pageQuery func() *bun.SelectQuery

// fetchPage runs the content query for req and, unless the count shortcut
// applies, the count query. The shortcut only fires at offset 0 when fewer
// rows than the page size came back: that page is then the whole result.
func fetchPage[T any](ctx context.Context, req *types.PageRequest, shortcut bool, query pageQuery) (*types.Pagination[T], error) {
	if req == nil {
		req = types.NewOffsetPageRequest(0, types.DefaultPageSize)
	}
	pagination := types.NewDefaultPagination[T](req)

	items := make([]*T, 0, req.GetPageSize())
	content := query().
		Offset(req.GetOffset()).
		Limit(req.GetPageSize())
	if orders := req.GetOrders(); len(orders) > 0 {
		content = content.Order(orders...)
	}
	if err := content.Scan(ctx, &items); err != nil {
		return nil, err
	}
	pagination.Items = items

	if shortcut && req.GetOffset() == 0 && len(items) < req.GetPageSize() {
		pagination.Total = len(items)
		return pagination, nil
	}

	total, err := query().Count(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.CountExecuted = true
	return pagination, nil
}
