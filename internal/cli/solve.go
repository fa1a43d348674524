package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/usecase"
)

// solveFlags are shared by the ad-hoc solve commands.
type solveFlags struct {
	workspace string
	profile   string
	server    string
	format    string
	trace     bool

	tol       float64
	maxIter   int
	errorType string
}

func (f *solveFlags) bind(c *cobra.Command) {
	c.Flags().StringVarP(&f.workspace, "workspace", "w", "", "Workspace root (optional; built-in defaults apply outside a workspace)")
	c.Flags().StringVarP(&f.profile, "profile", "p", "", "Profile applied on top of the flags' defaults")
	c.Flags().StringVar(&f.server, "server", "", "Solve on a numlab server at this URL instead of locally")
	c.Flags().StringVar(&f.format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&f.trace, "trace", false, "Print the iteration trace")
	c.Flags().Float64Var(&f.tol, "tol", domain.DefaultTolerance, "Tolerance")
	c.Flags().IntVar(&f.maxIter, "max-iter", domain.DefaultMaxIterations, "Maximum iterations")
	c.Flags().StringVar(&f.errorType, "error-type", string(domain.ErrorAbsolute), "Error metric: absolute|relative")
}

// settings resolves workspace defaults, the optional profile and the flags
// the user actually set, in that order.
func (f *solveFlags) settings(c *cobra.Command, ws *workspaceCtx) (domain.SolveSettings, error) {
	var t domain.Tuning
	if c.Flags().Changed("tol") {
		t.Tolerance = &f.tol
	}
	if c.Flags().Changed("max-iter") {
		t.MaxIterations = &f.maxIter
	}
	if c.Flags().Changed("error-type") {
		et, err := domain.ParseErrorType(f.errorType)
		if err != nil {
			return domain.SolveSettings{}, err
		}
		t.ErrorType = &et
	}

	var prof domain.Tuning
	if f.profile != "" {
		if ws.profiles == nil {
			return domain.SolveSettings{}, fmt.Errorf("--profile needs a workspace (tip: run `numlab init`)")
		}
		p, err := ws.profiles.LoadProfile(f.profile)
		if err != nil {
			return domain.SolveSettings{}, err
		}
		prof = p.Tuning
	}
	return usecase.ResolveSettings(ws.cfg.Defaults.Settings, prof, t)
}

func (f *solveFlags) solve(c *cobra.Command, p domain.ProblemSpec) error {
	if err := checkFormat(f.format); err != nil {
		return err
	}

	ws := optionalWorkspace(f.workspace)
	ws.useServer(f.server)

	s, err := f.settings(c, ws)
	if err != nil {
		return err
	}

	res, err := ws.solver.Solve(c.Context(), p, s)
	if err != nil {
		return err
	}
	if err := printProblem(os.Stdout, res, f.format, f.trace); err != nil {
		return err
	}
	if res.Error != nil {
		return fmt.Errorf("%s failed: %s", p.Method, res.Error.Kind)
	}
	if !res.Converged {
		return fmt.Errorf("%s did not converge in %d iteration(s)", p.Method, res.Iterations)
	}
	return nil
}

func printProblem(w io.Writer, res domain.ProblemResult, format string, trace bool) error {
	if format == "json" {
		return printJSON(w, res)
	}
	printPrettyProblem(w, res, trace)
	return nil
}

func rootFindCmd() *cobra.Command {
	var flags solveFlags
	var params domain.RootParams
	var a, b, x0, x1 float64

	c := &cobra.Command{
		Use:   "root <method>",
		Short: "Find a root of f(x) with one method",
		Long: "Find a root of f(x) with one of: " + joinMethods(domain.RootMethods()) + ".\n\n" +
			"Bracket methods need --a and --b, secant needs --x0 and --x1, fixed point\n" +
			"needs --g and --x0, newton needs --x0.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domain.ParseMethod(args[0])
			if err != nil {
				return err
			}
			if m.Family() != domain.FamilyRoot {
				return fmt.Errorf("%q is not a root-finding method (expected %s)", m, joinMethods(domain.RootMethods()))
			}

			p := params
			set := func(name string, v *float64) *float64 {
				if cmd.Flags().Changed(name) {
					return v
				}
				return nil
			}
			p.A, p.B, p.X0, p.X1 = set("a", &a), set("b", &b), set("x0", &x0), set("x1", &x1)

			return flags.solve(cmd, domain.ProblemSpec{Name: string(m), Method: m, Root: &p})
		},
	}

	c.Flags().StringVar(&params.F, "f", "", "Function f(x), e.g. \"x^2 - 2\" (required)")
	c.Flags().StringVar(&params.G, "g", "", "Iteration function g(x) for fixed point")
	c.Flags().Float64Var(&a, "a", 0, "Lower bound of the bracket")
	c.Flags().Float64Var(&b, "b", 0, "Upper bound of the bracket")
	c.Flags().Float64Var(&x0, "x0", 0, "Initial guess")
	c.Flags().Float64Var(&x1, "x1", 0, "Second guess (secant)")
	c.Flags().BoolVar(&params.MultipleRoots, "multiple", false, "Newton for roots of multiplicity > 1")
	flags.bind(c)

	_ = c.MarkFlagRequired("f")
	return c
}

// systemFile is the YAML accepted by `linear --file`.
type systemFile struct {
	A     [][]float64 `yaml:"a"`
	B     []float64   `yaml:"b"`
	X0    []float64   `yaml:"x0"`
	Omega *float64    `yaml:"omega"`
}

func linearCmd() *cobra.Command {
	var flags solveFlags
	var file, matrix, rhs, guess string
	var omega float64

	c := &cobra.Command{
		Use:   "linear <method>",
		Short: "Solve A x = b with one iterative method",
		Long: "Solve A x = b with one of: " + joinMethods(domain.LinearMethods()) + ".\n\n" +
			"The system comes from --file (YAML with a, b, x0, omega) or from\n" +
			"--a \"4,-1;-1,4\" --b \"1,2\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domain.ParseMethod(args[0])
			if err != nil {
				return err
			}
			if m.Family() != domain.FamilyLinear {
				return fmt.Errorf("%q is not a linear method (expected %s)", m, joinMethods(domain.LinearMethods()))
			}

			var sys domain.LinearParams
			if file != "" {
				sys, err = readSystem(file)
				if err != nil {
					return err
				}
			}
			if matrix != "" {
				if sys.A, err = parseMatrix(matrix); err != nil {
					return fmt.Errorf("--a: %w", err)
				}
			}
			if rhs != "" {
				if sys.B, err = parseVector(rhs); err != nil {
					return fmt.Errorf("--b: %w", err)
				}
			}
			if guess != "" {
				if sys.X0, err = parseVector(guess); err != nil {
					return fmt.Errorf("--x0: %w", err)
				}
			}
			if cmd.Flags().Changed("omega") {
				sys.Omega = &omega
			}

			return flags.solve(cmd, domain.ProblemSpec{Name: string(m), Method: m, Linear: &sys})
		},
	}

	c.Flags().StringVar(&file, "file", "", "YAML file holding the system")
	c.Flags().StringVar(&matrix, "a", "", "Matrix rows separated by ';', entries by ','")
	c.Flags().StringVar(&rhs, "b", "", "Right-hand side, comma separated")
	c.Flags().StringVar(&guess, "x0", "", "Initial guess, comma separated (defaults to zeros)")
	c.Flags().Float64Var(&omega, "omega", 1, "Relaxation factor for sor, in (0, 2]")
	flags.bind(c)
	return c
}

func readSystem(path string) (domain.LinearParams, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.LinearParams{}, &domain.OpError{Op: "cli.readsystem", Kind: domain.KindNotFound, Path: path, Err: err}
	}
	var f systemFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.LinearParams{}, &domain.OpError{Op: "cli.readsystem", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	return domain.LinearParams{A: f.A, B: f.B, X0: f.X0, Omega: f.Omega}, nil
}

func parseVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty vector")
	}
	return out, nil
}

func parseMatrix(s string) ([][]float64, error) {
	var out [][]float64
	for i, row := range strings.Split(s, ";") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		v, err := parseVector(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	return out, nil
}

func joinMethods(ms []domain.Method) string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func compareCmd() *cobra.Command {
	var workspace, study, problem, profile, server, format string
	var methods []string

	c := &cobra.Command{
		Use:   "compare",
		Short: "Solve one problem of a study with several methods and rank them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			studyPath, err := resolveStudyPath(ws, study)
			if err != nil {
				return err
			}
			ws.useServer(server)

			st, err := ws.studies.LoadStudy(studyPath)
			if err != nil {
				return err
			}
			p, ok := st.Find(problem)
			if !ok {
				return &domain.OpError{
					Op:   "cli.compare",
					Kind: domain.KindNotFound,
					Path: problem,
					Err:  fmt.Errorf("problem not in study %q: %w", st.Name, domain.ErrNotFound),
				}
			}

			var prof domain.Tuning
			if name := firstNonEmpty(profile, ws.cfg.Defaults.Profile); name != "" {
				pr, err := ws.profiles.LoadProfile(name)
				if err != nil {
					return err
				}
				prof = pr.Tuning
			}
			s, err := usecase.ResolveSettings(ws.cfg.Defaults.Settings, st.Defaults, p.Tuning, prof)
			if err != nil {
				return err
			}

			ms := make([]domain.Method, 0, len(methods))
			for _, name := range methods {
				m, err := domain.ParseMethod(name)
				if err != nil {
					return err
				}
				ms = append(ms, m)
			}

			cmp, err := usecase.NewCompare(ws.solver).Execute(cmd.Context(), p, ms, s)
			if err != nil {
				return err
			}
			return printComparison(os.Stdout, cmp, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&study, "study", "s", "", "Study name or path (required)")
	c.Flags().StringVar(&problem, "problem", "", "Problem name inside the study (required)")
	c.Flags().StringSliceVarP(&methods, "methods", "m", nil, "Methods to compare (defaults to every method of the problem's family)")
	c.Flags().StringVarP(&profile, "profile", "p", "", "Profile name or path")
	c.Flags().StringVar(&server, "server", "", "Solve on a numlab server at this URL instead of locally")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("study")
	_ = c.MarkFlagRequired("problem")
	return c
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
