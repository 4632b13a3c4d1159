// Package tinytables implements the two party preprocessing of the
// TinyTables protocol for boolean circuits.
//
// Every wire carries a random mask r = r¹ ⊕ r² shared between parties 1 and
// 2. During the online phase the parties learn the masked value e = x ⊕ r
// of each wire. For an AND gate with inputs U, V and output O, each party
// holds a table such that the XOR of both lookups at (e_U, e_V) is e_O.
package tinytables

// TinyTable is the share of one party of the table of an AND gate.
// Entry 2c + d is used for masked inputs c and d.
type TinyTable [4]bool

// Lookup returns the entry for masked inputs c and d.
func (t TinyTable) Lookup(c, d bool) bool {
	i := 0
	if c {
		i += 2
	}
	if d {
		i++
	}
	return t[i]
}

// Evaluate returns the masked output of an AND gate from the tables of both
// parties and the masked inputs.
func Evaluate(t1, t2 TinyTable, eU, eV bool) bool {
	return t1.Lookup(eU, eV) != t2.Lookup(eU, eV)
}

func xor(bits ...bool) bool {
	var out bool
	for _, b := range bits {
		out = out != b
	}
	return out
}

// player1Table derives the table of party 1 from its mask shares and the
// random OT masks x0, x1.
func player1Table(rU, rV, rO, x0, x1 bool) TinyTable {
	var e TinyTable
	e[0] = xor(rU && rV, rO, x0, x1)
	e[1] = xor(e[0], rU)
	e[2] = xor(e[0], rV)
	e[3] = xor(e[0], rU, rV)
	return e
}

// player2Table derives the table of party 2 from the OT outputs
// y0 = x0 ⊕ r¹_U r²_V and y1 = x1 ⊕ r¹_V r²_U.
func player2Table(rU, rV, rO, y0, y1 bool) TinyTable {
	var s TinyTable
	s[0] = xor(y0, y1, rU && rV, rO)
	s[1] = xor(s[0], rU)
	s[2] = xor(s[0], rV)
	s[3] = xor(s[0], rU, rV, true)
	return s
}
