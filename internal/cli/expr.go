package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/expr"
)

func exprCmd() *cobra.Command {
	var at float64
	var format string

	c := &cobra.Command{
		Use:   "expr <expression>",
		Short: "Check an expression and print its normal form and derivatives",
		Long: "Check an expression in x and print its normal form, f' and f''.\n\n" +
			"Allowed functions: " + strings.Join(expr.AllowedFunctions(), ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			var value *float64
			if cmd.Flags().Changed("at") {
				value = &at
			}
			return describeExpr(os.Stdout, args[0], value, format)
		},
	}

	c.Flags().Float64Var(&at, "at", 0, "Also evaluate f at this x")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

// exprReport mirrors the HTTP API's expression response.
type exprReport struct {
	Input            string   `json:"input"`
	Normalized       string   `json:"normalized"`
	Derivative       string   `json:"derivative"`
	SecondDerivative string   `json:"second_derivative"`
	Value            *float64 `json:"value,omitempty"`
	ValueError       string   `json:"value_error,omitempty"`
}

func describeExpr(w io.Writer, text string, at *float64, format string) error {
	fn, err := expr.Compile(text)
	if err != nil {
		return err
	}
	d1, d2, err := fn.Derivatives()
	if err != nil {
		return err
	}

	rep := exprReport{
		Input:            text,
		Normalized:       fn.String(),
		Derivative:       d1.String(),
		SecondDerivative: d2.String(),
	}
	if at != nil {
		// NaN and infinities have no JSON form.
		if v := fn.At(*at); math.IsNaN(v) || math.IsInf(v, 0) {
			rep.ValueError = fmt.Sprintf("non-finite value %g", v)
		} else {
			rep.Value = &v
		}
	}

	if format == "json" {
		return printJSON(w, rep)
	}
	fmt.Fprintf(w, "f(x)   = %s\n", rep.Normalized)
	fmt.Fprintf(w, "f'(x)  = %s\n", rep.Derivative)
	fmt.Fprintf(w, "f''(x) = %s\n", rep.SecondDerivative)
	switch {
	case rep.Value != nil:
		fmt.Fprintf(w, "f(%s) = %s\n", num(*at), num(*rep.Value))
	case rep.ValueError != "":
		fmt.Fprintf(w, "f(%s) is undefined (%s)\n", num(*at), rep.ValueError)
	}
	return nil
}
