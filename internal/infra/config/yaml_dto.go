package config

// YAMLSettings are the tunable knobs shared by studies, problems and profiles.
type YAMLSettings struct {
	Tolerance     *float64 `yaml:"tolerance"`
	MaxIterations *int     `yaml:"max_iterations"`
	ErrorType     string   `yaml:"error_type"`
}

type YAMLStudy struct {
	Name     string            `yaml:"name"`
	Vars     map[string]string `yaml:"vars"`
	Defaults YAMLSettings      `yaml:"defaults"`
	Problems []YAMLProblem     `yaml:"problems"`
}

type YAMLProblem struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method"`

	F             string   `yaml:"f"`
	G             string   `yaml:"g"`
	A             *float64 `yaml:"a"`
	B             *float64 `yaml:"b"`
	X0            *float64 `yaml:"x0"`
	X1            *float64 `yaml:"x1"`
	MultipleRoots bool     `yaml:"multiple_roots"`

	Linear *YAMLLinear `yaml:"linear"`

	YAMLSettings `yaml:",inline"`

	Assert YAMLAssertions `yaml:"assert"`
}

type YAMLLinear struct {
	A     [][]float64 `yaml:"a"`
	B     []float64   `yaml:"b"`
	X0    []float64   `yaml:"x0"`
	Omega *float64    `yaml:"omega"`
}

type YAMLAssertions struct {
	Converged     *bool       `yaml:"converged"`
	MaxIterations *int        `yaml:"max_iterations"`
	MaxMS         *int        `yaml:"max_ms"`
	Root          *YAMLBounds `yaml:"root"`

	JSONPath map[string]YAMLJSONPathAssertion `yaml:"jsonpath"`
}

type YAMLBounds struct {
	Gt *float64 `yaml:"gt"`
	Lt *float64 `yaml:"lt"`
}

type YAMLJSONPathAssertion struct {
	Exists   bool     `yaml:"exists"`
	Eq       *string  `yaml:"eq"`
	Contains *string  `yaml:"contains"`
	Matches  *string  `yaml:"matches"`
	Gt       *float64 `yaml:"gt"`
	Lt       *float64 `yaml:"lt"`
}

type YAMLProfile struct {
	YAMLSettings `yaml:",inline"`
}
