package snapshot

import (
	"sort"

	"github.com/koustreak/tablescope/internal/schema"
)

// Change pairs the old and new record of a table present in both listings.
type Change struct {
	Name string             `json:"name"`
	From schema.TableRecord `json:"from"`
	To   schema.TableRecord `json:"to"`
}

// Diff is the difference between two listings of the same schema.
// Every slice is ordered by table name.
type Diff struct {
	Added   []schema.TableRecord `json:"added"`
	Removed []schema.TableRecord `json:"removed"`
	Changed []Change             `json:"changed"`
}

// Empty reports whether the two listings were identical.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare reports how to turn the tables of from into the tables of to.
// AutoIncrement moves with every insert, so it is ignored.
func Compare(from, to []schema.TableRecord) Diff {
	old := make(map[string]schema.TableRecord, len(from))
	for _, r := range from {
		old[r.Name] = r
	}

	d := Diff{
		Added:   []schema.TableRecord{},
		Removed: []schema.TableRecord{},
		Changed: []Change{},
	}
	for _, r := range to {
		prev, ok := old[r.Name]
		if !ok {
			d.Added = append(d.Added, r)
			continue
		}
		delete(old, r.Name)
		if !sameShape(prev, r) {
			d.Changed = append(d.Changed, Change{Name: r.Name, From: prev, To: r})
		}
	}
	for _, r := range old {
		d.Removed = append(d.Removed, r)
	}

	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Name < d.Added[j].Name })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Name < d.Removed[j].Name })
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Name < d.Changed[j].Name })
	return d
}

func sameShape(a, b schema.TableRecord) bool {
	a.AutoIncrement, b.AutoIncrement = 0, 0
	return a == b
}
