package tfcode

import "reflect"

// ChangeType classifies a block difference between two branches
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeDeleted  ChangeType = "deleted"
	ChangeModified ChangeType = "modified"
	ChangeNone     ChangeType = "no_change"
)

// KeyDiff records one modified config key
type KeyDiff struct {
	Key         string `json:"key"`
	TargetValue any    `json:"target_value"`
	SourceValue any    `json:"source_value"`
}

// BlockChange is the comparison result for a single address
type BlockChange struct {
	Address      string     `json:"address"`
	ChangeType   ChangeType `json:"change_type"`
	BlockType    string     `json:"block_type"`
	AddedKeys    []string   `json:"added_keys,omitempty"`
	RemovedKeys  []string   `json:"removed_keys,omitempty"`
	ModifiedKeys []KeyDiff  `json:"modified_keys,omitempty"`
}

// ComparisonSummary counts changes by type
type ComparisonSummary struct {
	Added    int `json:"added"`
	Deleted  int `json:"deleted"`
	Modified int `json:"modified"`
	NoChange int `json:"no_change"`
	Total    int `json:"total"`
}

// Comparison is the full address-keyed diff between two snapshots
type Comparison struct {
	Summary ComparisonSummary       `json:"summary"`
	Changes map[string]*BlockChange `json:"results_by_address"`
}

// Compare diffs a source branch's snapshot against a target's, keyed by
// block address. Blocks only in source are "added", only in target are
// "deleted". Locals are compared per key under their local.<key> addresses.
func Compare(target, source *Snapshot) *Comparison {
	targetBlocks := blocksByAddress(target)
	sourceBlocks := blocksByAddress(source)

	comparison := &Comparison{
		Changes: make(map[string]*BlockChange),
	}

	addresses := make(map[string]struct{}, len(targetBlocks)+len(sourceBlocks))
	for addr := range targetBlocks {
		addresses[addr] = struct{}{}
	}
	for addr := range sourceBlocks {
		addresses[addr] = struct{}{}
	}

	for addr := range addresses {
		tb, inTarget := targetBlocks[addr]
		sb, inSource := sourceBlocks[addr]

		change := &BlockChange{Address: addr}
		switch {
		case !inTarget:
			change.ChangeType = ChangeAdded
			change.BlockType = string(sb.Kind)
		case !inSource:
			change.ChangeType = ChangeDeleted
			change.BlockType = string(tb.Kind)
		default:
			change.BlockType = string(sb.Kind)
			diffConfigs(tb.Config, sb.Config, change)
		}

		comparison.Changes[addr] = change

		switch change.ChangeType {
		case ChangeAdded:
			comparison.Summary.Added++
		case ChangeDeleted:
			comparison.Summary.Deleted++
		case ChangeModified:
			comparison.Summary.Modified++
		default:
			comparison.Summary.NoChange++
		}
	}
	comparison.Summary.Total = len(addresses)

	return comparison
}

// blocksByAddress maps every addressable block, splitting locals into one
// synthetic block per key so they diff independently.
func blocksByAddress(s *Snapshot) map[string]*Block {
	byAddr := make(map[string]*Block)
	for _, b := range s.Blocks {
		switch b.Kind {
		case KindLocals:
			for key, value := range b.Config {
				byAddr["local."+key] = &Block{
					Kind:   KindLocals,
					Name:   key,
					Config: map[string]any{key: value},
				}
			}
		case KindTerraform:
			continue
		default:
			if b.Address != "" {
				byAddr[b.Address] = b
			}
		}
	}
	return byAddr
}

func diffConfigs(targetCfg, sourceCfg map[string]any, change *BlockChange) {
	if reflect.DeepEqual(targetCfg, sourceCfg) {
		change.ChangeType = ChangeNone
		return
	}
	change.ChangeType = ChangeModified

	for key := range sourceCfg {
		if _, ok := targetCfg[key]; !ok {
			change.AddedKeys = append(change.AddedKeys, key)
		}
	}
	for key := range targetCfg {
		if _, ok := sourceCfg[key]; !ok {
			change.RemovedKeys = append(change.RemovedKeys, key)
		}
	}
	for key, tv := range targetCfg {
		sv, ok := sourceCfg[key]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(tv, sv) {
			change.ModifiedKeys = append(change.ModifiedKeys, KeyDiff{
				Key:         key,
				TargetValue: tv,
				SourceValue: sv,
			})
		}
	}
}
