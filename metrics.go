// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import (
	"expvar"
	"fmt"
	"strings"
)

// Metrics receives gauges about the tables held by a [Registry] and the
// node arena behind them.
type Metrics interface {
	TableCount(numTables int)
	NodeCount(tableName string, numNodes int)
	ArenaBlockCount(numBlocks int)
	PruneCount(numPruned int)
}

// ExpVarMetrics is a simple implementation for the metrics.
type ExpVarMetrics struct {
	TableCountVar      *expvar.Int
	NodeCountVar       *expvar.Map
	ArenaBlockCountVar *expvar.Int
	PruneCountVar      *expvar.Int
}

func NewExpVarMetrics(publish bool) *ExpVarMetrics {
	newInt := func(name string) *expvar.Int {
		if publish {
			return expvar.NewInt(name)
		}
		return new(expvar.Int)
	}
	newMap := func(name string) *expvar.Map {
		if publish {
			return expvar.NewMap(name)
		}
		return new(expvar.Map).Init()
	}
	return &ExpVarMetrics{
		TableCountVar:      newInt("table_count"),
		NodeCountVar:       newMap("node_count"),
		ArenaBlockCountVar: newInt("arena_block_count"),
		PruneCountVar:      newInt("prune_count"),
	}
}

func (m *ExpVarMetrics) String() (out string) {
	var b strings.Builder
	fmt.Fprintf(&b, "table_count: %s\n", m.TableCountVar.String())
	m.NodeCountVar.Do(func(kv expvar.KeyValue) {
		fmt.Fprintf(&b, "node_count[%s]: %s\n", kv.Key, kv.Value.String())
	})
	fmt.Fprintf(&b, "arena_block_count: %s\n", m.ArenaBlockCountVar.String())
	fmt.Fprintf(&b, "prune_count: %s\n", m.PruneCountVar.String())
	return b.String()
}

func (m *ExpVarMetrics) TableCount(numTables int) {
	m.TableCountVar.Set(int64(numTables))
}

func (m *ExpVarMetrics) NodeCount(tableName string, numNodes int) {
	var intVar expvar.Int
	intVar.Set(int64(numNodes))
	m.NodeCountVar.Set(tableName, &intVar)
}

func (m *ExpVarMetrics) ArenaBlockCount(numBlocks int) {
	m.ArenaBlockCountVar.Set(int64(numBlocks))
}

func (m *ExpVarMetrics) PruneCount(numPruned int) {
	m.PruneCountVar.Set(int64(numPruned))
}

var _ Metrics = &ExpVarMetrics{}
