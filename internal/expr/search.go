package expr

// Search collects every subexpression of e that is structurally equal
// to pattern, appending each match (as found, pre-order) to result.
func Search(e Expr, pattern Expr, result *[]Expr) {
	Visit(e, &searchVisitor{pattern: pattern, result: result})
}

type searchVisitor struct {
	pattern Expr
	result  *[]Expr
}

func (s *searchVisitor) Pre(e Expr) bool {
	if Equals(e, s.pattern) {
		*s.result = append(*s.result, e)
	}
	return true
}

func (s *searchVisitor) Post(Expr) {}

// SearchReplaceAll returns a copy of e with every subexpression
// structurally equal to pattern replaced by replacement.
func SearchReplaceAll(e Expr, pattern Expr, replacement Expr) Expr {
	return RewriteFunc(e, func(n Expr) Expr {
		if Equals(n, pattern) {
			return Clone(replacement)
		}
		return n
	})
}

// Contains reports whether e has any subexpression structurally equal
// to pattern.
func Contains(e Expr, pattern Expr) bool {
	var found bool
	Visit(e, &containsVisitor{pattern: pattern, found: &found})
	return found
}

type containsVisitor struct {
	pattern Expr
	found   *bool
}

func (c *containsVisitor) Pre(e Expr) bool {
	if *c.found {
		return false
	}
	if Equals(e, c.pattern) {
		*c.found = true
		return false
	}
	return true
}

func (c *containsVisitor) Post(Expr) {}
