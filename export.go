package grasp

import (
	"context"

	"github.com/syssam/grasp/graph"
)

// Exporter serializes the entire current graph into text under the given
// transaction. Sessions carry two exporters: one for the textual
// graph-encoding format and one for the query-language-literal format.
type Exporter interface {
	Export(ctx context.Context, tx graph.Tx) (string, error)
}

// ExportAttributes normalizes an arbitrary mapping whose values are either
// nested attribute maps or store entities. Entity values are converted to
// their exported attribute maps; entries whose value is neither are
// dropped.
func ExportAttributes(m map[string]any) map[string]graph.Attrs {
	out := make(map[string]graph.Attrs, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case graph.Attrs:
			out[k] = v
		case map[string]any:
			out[k] = graph.Attrs(v)
		case graph.Entity:
			out[k] = v.Attributes()
		}
	}
	return out
}
