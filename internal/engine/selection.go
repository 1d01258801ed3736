package engine

// Toggle returns a copy of the list with the Checked flag of id flipped.
// An unknown id yields a value-equal copy.
func (l ContactList) Toggle(id string) ContactList {
	if l == nil {
		return nil
	}
	out := make(ContactList, len(l))
	copy(out, l)
	for i := range out {
		if out[i].ID == id {
			out[i].Checked = !out[i].Checked
			break
		}
	}
	return out
}

// Selected returns the checked entries in list order.
func (l ContactList) Selected() ContactList {
	var out ContactList
	for _, c := range l {
		if c.Checked {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the entry with the given id.
func (l ContactList) Find(id string) (ContactDisplayModel, bool) {
	for _, c := range l {
		if c.ID == id {
			return c, true
		}
	}
	return ContactDisplayModel{}, false
}

// CheckedCount reports how many entries are selected.
func (l ContactList) CheckedCount() int {
	n := 0
	for _, c := range l {
		if c.Checked {
			n++
		}
	}
	return n
}
