package opt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteLP renders the problem in CPLEX LP format, the interchange form
// accepted by the external solvers. Output is deterministic for a given
// problem: variables and constraints appear in insertion order.
func (p *Problem) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ %s\n", p.Name)
	fmt.Fprintln(bw, "Minimize")
	fmt.Fprint(bw, " obj:")
	first := true
	for i, v := range p.Variables {
		if v.Cost == 0 {
			continue
		}
		writeTerm(bw, v.Cost, LPName(p.Variables[i].Name), first)
		first = false
	}
	if first && len(p.Variables) > 0 {
		// A constant-free empty objective still needs one term.
		fmt.Fprintf(bw, " 0 %s", LPName(p.Variables[0].Name))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range p.Constraints {
		fmt.Fprintf(bw, " %s:", LPName(c.Name))
		for i, term := range c.Terms {
			writeTerm(bw, term.Coeff, LPName(p.Variables[term.Var].Name), i == 0)
		}
		fmt.Fprintf(bw, " %s %.17g\n", senseSymbol(c.Sense), c.RHS)
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range p.Variables {
		name := LPName(v.Name)
		switch {
		case Infinite(v.Upper) && v.Lower == 0:
			// LP default, nothing to declare.
		case Infinite(v.Upper):
			fmt.Fprintf(bw, " %s >= %.17g\n", name, v.Lower)
		default:
			fmt.Fprintf(bw, " %.17g <= %s <= %.17g\n", v.Lower, name, v.Upper)
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

// writeTerm renders one signed linear term.
func writeTerm(w io.Writer, coeff float64, name string, first bool) {
	switch {
	case coeff >= 0 && first:
		fmt.Fprintf(w, " %.17g %s", coeff, name)
	case coeff >= 0:
		fmt.Fprintf(w, " + %.17g %s", coeff, name)
	default:
		fmt.Fprintf(w, " - %.17g %s", -coeff, name)
	}
}

func senseSymbol(s Sense) string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	default:
		return "="
	}
}

// LPName sanitizes an identifier for the LP format.
func LPName(name string) string {
	replacer := strings.NewReplacer(" ", "_", "+", "p", "-", "_", ":", "_")
	return replacer.Replace(name)
}
