package textclean

// Rule is a single named text repair. Apply must be pure.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Chain is an ordered list of rules. Order matters: several rules match
// supersets or subsets of each other's patterns.
type Chain []Rule

// Run applies every rule once, in order.
func (c Chain) Run(s string) string {
	for _, rule := range c {
		s = rule.Apply(s)
	}
	return s
}

// Stabilize runs the chain until a pass leaves the text unchanged or
// maxPasses passes have run.
func (c Chain) Stabilize(s string, maxPasses int) string {
	for i := 0; i < maxPasses; i++ {
		next := c.Run(s)
		if next == s {
			return next
		}
		s = next
	}
	return s
}

// Names lists the rule names in application order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, rule := range c {
		names[i] = rule.Name
	}
	return names
}

// Lookup returns the rule with the given name.
func (c Chain) Lookup(name string) (Rule, bool) {
	for _, rule := range c {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}
