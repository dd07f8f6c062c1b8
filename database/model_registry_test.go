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

package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type registryAlpha struct{}
type registryBeta struct{}
type registryGamma struct{}

func TestModelRegistryOrder(t *testing.T) {
	r := newModelRegistry()
	r.Register(NewModelAdapter((*registryGamma)(nil), 2))
	r.Register(NewModelAdapter((*registryBeta)(nil), 1))
	r.Register(NewModelAdapter((*registryAlpha)(nil), 2))
	r.Register(NewModelAdapter((*registryBeta)(nil), 1))

	models := r.Models()
	require.Len(t, models, 3)

	var names []string
	for _, m := range models {
		names = append(names, getModelName(m.Instance()))
	}
	require.Equal(t, []string{"registryBeta", "registryAlpha", "registryGamma"}, names)
}
