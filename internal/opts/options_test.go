/*
 * Copyright 2022 CloudWeGo Authors
 *
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


package opts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/regionopt/ir"
)

func TestParseOrDefault(t *testing.T) {
	t.Setenv("REGIONOPT_TEST_VALUE", "")
	assert.Equal(t, 7, parseOrDefault("REGIONOPT_TEST_VALUE", 7, 1))
	t.Setenv("REGIONOPT_TEST_VALUE", "0x20")
	assert.Equal(t, 32, parseOrDefault("REGIONOPT_TEST_VALUE", 7, 1))
	t.Setenv("REGIONOPT_TEST_VALUE", "1")
	assert.Equal(t, 1, parseOrDefault("REGIONOPT_TEST_VALUE", 7, 1))
	t.Setenv("REGIONOPT_TEST_VALUE", "0")
	assert.PanicsWithValue(t, "regionopt: value too small for REGIONOPT_TEST_VALUE", func() {
		parseOrDefault("REGIONOPT_TEST_VALUE", 7, 1)
	})
	t.Setenv("REGIONOPT_TEST_VALUE", "many")
	assert.PanicsWithValue(t, "regionopt: invalid value for REGIONOPT_TEST_VALUE", func() {
		parseOrDefault("REGIONOPT_TEST_VALUE", 7, 1)
	})
}

func TestOptions_CanIterate(t *testing.T) {
	o := Options{MaxIterations: 2}
	assert.True(t, o.CanIterate(0))
	assert.True(t, o.CanIterate(1))
	assert.False(t, o.CanIterate(2))
	o.MaxIterations = 0
	assert.True(t, o.CanIterate(1 << 20))
}

type _Effects struct{}

func (_Effects) HasEffect(*ir.Instr) bool { return true }

func TestOptions_Oracles(t *testing.T) {
	o := GetDefaultOptions()
	require.Equal(t, MaxIterations, o.MaxIterations)
	assert.Equal(t, ir.Traits, o.EffectOracle())
	assert.Equal(t, ir.Traits, o.BranchOracle())
	assert.Equal(t, ir.EffectRemoval{Effects: ir.Traits}, o.RemovalOracle())

	/* the removal oracle follows the effect oracle */
	o.Effects = _Effects{}
	assert.Equal(t, ir.EffectRemoval{Effects: _Effects{}}, o.RemovalOracle())

	/* unless given explicitly */
	o.Removal = ir.Traits
	assert.Equal(t, ir.Traits, o.RemovalOracle())
}
