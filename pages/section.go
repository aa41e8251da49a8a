package pages

// Named pairs an element with a human readable label for assertion messages.
type Named struct {
	Name string
	Element
}

// Section is a tab (or sidebar entry) together with the items it reveals.
type Section struct {
	Name  string
	Tab   Element
	Items []Named
}

// Open clicks the section tab.
func (s Section) Open() error {
	return s.Tab.Click()
}

// Missing returns the names of items that did not become visible within the
// long timeout. The section has to be open already.
func (s Section) Missing() []string {
	var missing []string
	for _, item := range s.Items {
		if !item.Settled() {
			missing = append(missing, item.Name)
		}
	}
	return missing
}

// Present returns the names of items that are visible. Used for checks where
// items must be absent for a role.
func (s Section) Present() []string {
	var present []string
	for _, item := range s.Items {
		if !item.Absent() {
			present = append(present, item.Name)
		}
	}
	return present
}
