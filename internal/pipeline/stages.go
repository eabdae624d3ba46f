package pipeline

import (
	"fmt"
	"log"

	"prgenfuel/internal/classify"
	"prgenfuel/internal/config"
	"prgenfuel/internal/table"
	"prgenfuel/internal/transformer"
	"prgenfuel/internal/transformer/builtin"
)

// NormalizeChain builds the Loader/Normalizer steps: key check, null
// sentinel, float casts, flag decoding and categorical marking.
func NormalizeChain(p config.Pipeline) transformer.Chain {
	n := p.Normalize
	chain := transformer.Chain{
		transformer.Named{Name: "require", Step: builtin.Require{Columns: p.Reshape.KeyColumns}},
		transformer.Named{Name: "null_sentinel", Step: builtin.NullSentinel{Sentinel: n.NullSentinel}},
		transformer.Named{Name: "float", Step: builtin.Float{Markers: n.FloatMarkers, Strict: n.StrictFloats}},
	}
	if n.FlagColumn != "" {
		chain = append(chain, transformer.Named{Name: "flag", Step: builtin.Flag{
			Column: n.FlagColumn,
			True:   n.FlagTrue,
			False:  n.FlagFalse,
		}})
	}
	if len(n.Categorical) > 0 {
		chain = append(chain, transformer.Named{Name: "categorical", Step: builtin.Categorical{Columns: n.Categorical}})
	}
	return chain
}

// ExclusionRules converts configured exclusions.
func ExclusionRules(in []config.Exclusion) []builtin.ExclusionRule {
	out := make([]builtin.ExclusionRule, len(in))
	for i, e := range in {
		out[i] = builtin.ExclusionRule{PlantID: e.PlantID, Year: e.Year, NullColumn: e.NullColumn, Reason: e.Reason}
	}
	return out
}

// AnnualTable is the normalized wide table without any monthly column.
// Repeated entity keys are logged; the annual table keeps them.
func AnnualTable(wide *table.Table, key []string) (*table.Table, error) {
	monthly, _ := classify.Split(wide.Names())
	annual, err := builtin.DropColumns{Columns: monthly}.Apply(wide)
	if err != nil {
		return nil, err
	}
	dups, err := builtin.FindDuplicates(annual, key)
	if err != nil {
		return nil, fmt.Errorf("annual key check: %w", err)
	}
	if len(dups) > 0 {
		log.Printf("annual: warning: %d repeated entity keys, first %s", len(dups), dups[0])
	}
	return annual, nil
}
