package relationship

import "github.com/google/uuid"

// FamilyUnit is a family whose GEDCOM member ids have already been resolved
// to person ids. An unresolved member is uuid.Nil and contributes no edges.
type FamilyUnit struct {
	Husband  uuid.UUID
	Wife     uuid.UUID
	Children []uuid.UUID
}

// BuildFromFamilies derives the relationship rows implied by family
// structures: a father edge per resolved husband→child, a mother edge per
// resolved wife→child, and a symmetric spouse pair only when both spouses
// resolved. The result is deduplicated on the exact tuple, keeping first
// occurrences in order.
func BuildFromFamilies(tenantID uuid.UUID, families []FamilyUnit) []Relationship {
	var rels []Relationship

	for _, fam := range families {
		for _, child := range fam.Children {
			if child == uuid.Nil {
				continue
			}
			if fam.Husband != uuid.Nil && fam.Husband != child {
				if rel, err := New(tenantID, fam.Husband, child, ParentOf{ParentRole: RoleFather}); err == nil {
					rels = append(rels, rel)
				}
			}
			if fam.Wife != uuid.Nil && fam.Wife != child {
				if rel, err := New(tenantID, fam.Wife, child, ParentOf{ParentRole: RoleMother}); err == nil {
					rels = append(rels, rel)
				}
			}
		}
		if fam.Husband != uuid.Nil && fam.Wife != uuid.Nil && fam.Husband != fam.Wife {
			if pair, err := NewSpousePair(tenantID, fam.Husband, fam.Wife); err == nil {
				rels = append(rels, pair...)
			}
		}
	}

	return Deduplicate(rels)
}
