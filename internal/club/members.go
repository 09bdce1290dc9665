package club

import "sort"

// hierarchy orders membership ranks from highest to lowest. Lower index
// means higher rank.
var hierarchy = []string{
	"Presidente",
	"Vicepresidente",
	"Sargento de armas",
	"Secretario",
	"Tesorero",
	"Capitan de ruta",
	"Full Patch",
	"Prospect",
	"Hangaround",
	"Support",
}

// excludedMemberTypes never appear in member listings.
var excludedMemberTypes = map[string]struct{}{
	"Retirado": {},
	"Support":  {},
}

func rankIndex(memberType string) int {
	for i, rank := range hierarchy {
		if rank == memberType {
			return i
		}
	}
	// Unlisted ranks sort after every listed one, keeping input order
	// among themselves.
	return len(hierarchy)
}

// SortMembersByHierarchy drops retired and support members, plus members
// whose membership type cannot be resolved at all, and orders the rest
// by rank. The sort is stable: equal ranks keep their input order.
func SortMembersByHierarchy(members []Record) []Record {
	kept := make([]Record, 0, len(members))
	for _, member := range members {
		pv, ok := FindProperty(member.Properties, MemberTypeAliases)
		if !ok {
			continue
		}
		memberType := Extract(pv)
		if _, excluded := excludedMemberTypes[memberType]; excluded {
			continue
		}
		kept = append(kept, member)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a := ExtractAlias(kept[i].Properties, MemberTypeAliases, "")
		b := ExtractAlias(kept[j].Properties, MemberTypeAliases, "")
		return rankIndex(a) < rankIndex(b)
	})
	return kept
}
