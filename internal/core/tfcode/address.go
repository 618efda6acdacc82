package tfcode

import "fmt"

// blockAddress computes the canonical address for a block at parse time.
// Locals and terraform blocks have no single address; providers get one for
// display but are excluded from the reference target set.
func blockAddress(b *Block) string {
	switch b.Kind {
	case KindResource:
		if b.Type == "" || b.Name == "" {
			return ""
		}
		return fmt.Sprintf("%s.%s", b.Type, b.Name)
	case KindData:
		if b.Type == "" || b.Name == "" {
			return ""
		}
		return fmt.Sprintf("data.%s.%s", b.Type, b.Name)
	case KindModule:
		if b.Name == "" {
			return ""
		}
		return "module." + b.Name
	case KindOutput:
		if b.Name == "" {
			return ""
		}
		return "output." + b.Name
	case KindVariable:
		if b.Name == "" {
			return ""
		}
		return "var." + b.Name
	case KindProvider:
		if b.Name == "" {
			return ""
		}
		return "provider." + b.Name
	default:
		return ""
	}
}

// Addresses computes the set of valid reference targets for a snapshot.
// Providers are not reference targets. A locals block contributes one
// local.<key> address per key. Degenerate addresses (missing type or name)
// are excluded so they cannot produce spurious matches.
func Addresses(s *Snapshot) AddressSet {
	set := make(AddressSet)
	for _, b := range s.Blocks {
		switch b.Kind {
		case KindProvider, KindTerraform:
			continue
		case KindLocals:
			for key := range b.Config {
				if key != "" {
					set["local."+key] = struct{}{}
				}
			}
		default:
			if b.Address != "" {
				set[b.Address] = struct{}{}
			}
		}
	}
	return set
}
