package solver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/opt"
	"github.com/vk/gridcap/internal/scenario"
)

// highsBinary is the executable looked up on PATH.
const highsBinary = "highs"

// presets maps an option-preset name onto the HiGHS algorithm selector.
var presets = map[string]string{
	"default": "choose",
	"simplex": "simplex",
	"ipm":     "ipm",
	// HiGHS implements its barrier method as the interior-point solver.
	"barrier": "ipm",
}

// HiGHS drives the HiGHS binary through LP files: the problem is written
// in LP format to a scratch directory, the binary solves it, and the raw
// solution file is parsed back.
type HiGHS struct {
	algorithm string
}

func newHiGHS(preset string) (*HiGHS, error) {
	if preset == "" {
		preset = "default"
	}
	algorithm, ok := presets[preset]
	if !ok {
		return nil, &scenario.ConfigurationError{
			Key:    "solving.solver.options",
			Reason: fmt.Sprintf("unknown option preset %q", preset),
		}
	}
	return &HiGHS{algorithm: algorithm}, nil
}

func (h *HiGHS) Name() string {
	return "highs"
}

// Available reports whether the HiGHS binary is on PATH.
func Available() bool {
	_, err := exec.LookPath(highsBinary)
	return err == nil
}

func (h *HiGHS) Solve(ctx context.Context, p *opt.Problem) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	dir, err := os.MkdirTemp("", "gridcap-solve-*")
	if err != nil {
		return nil, &Error{Kind: KindFailed, Err: err}
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.lp")
	solutionPath := filepath.Join(dir, "solution.sol")

	f, err := os.Create(modelPath)
	if err != nil {
		return nil, &Error{Kind: KindFailed, Err: err}
	}
	if err := p.WriteLP(f); err != nil {
		f.Close()
		return nil, &Error{Kind: KindFailed, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &Error{Kind: KindFailed, Err: err}
	}

	args := []string{
		"--solver", h.algorithm,
		"--solution_file", solutionPath,
		modelPath,
	}
	if deadline, ok := ctx.Deadline(); ok {
		budget := time.Until(deadline).Seconds()
		if budget <= 0 {
			return nil, &Error{Kind: KindTimeout, Err: context.DeadlineExceeded}
		}
		args = append([]string{"--time_limit", strconv.FormatFloat(budget, 'f', 3, 64)}, args...)
	}

	logger.Debug("Invoking solver.", "binary", highsBinary, "algorithm", h.algorithm, "model", modelPath)

	cmd := exec.CommandContext(ctx, highsBinary, args...)
	output, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, &Error{Kind: KindTimeout, Err: ctxErr}
	}
	if err != nil {
		return nil, &Error{Kind: KindFailed, Err: fmt.Errorf("%w: %s", err, firstLine(output))}
	}

	raw, err := os.ReadFile(solutionPath)
	if err != nil {
		return nil, &Error{Kind: KindFailed, Err: fmt.Errorf("no solution file: %w", err)}
	}
	return parseSolution(string(raw), p)
}

// parseSolution reads the raw HiGHS solution file. Variable names come back
// in their LP-sanitized form and are mapped onto model names again.
func parseSolution(raw string, p *opt.Problem) (*Result, error) {
	names := make(map[string]string, len(p.Variables))
	for _, v := range p.Variables {
		names[opt.LPName(v.Name)] = v.Name
	}

	result := &Result{Values: make(map[string]float64, len(p.Variables))}
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var inColumns, expectStatus bool
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "Model status":
			expectStatus = true
		case expectStatus:
			result.Status = line
			expectStatus = false
		case strings.HasPrefix(line, "Objective "):
			v, err := strconv.ParseFloat(strings.TrimPrefix(line, "Objective "), 64)
			if err != nil {
				return nil, &Error{Kind: KindFailed, Err: fmt.Errorf("malformed objective line %q", line)}
			}
			result.Objective = v
		case strings.HasPrefix(line, "# Columns"):
			inColumns = true
		case strings.HasPrefix(line, "# Rows"):
			inColumns = false
		case inColumns && line != "":
			fields := strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				continue
			}
			name, ok := names[fields[0]]
			if !ok {
				name = fields[0]
			}
			result.Values[name] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Kind: KindFailed, Err: err}
	}

	if result.Status != "Optimal" {
		return nil, &Error{Kind: KindNoSolution, Status: result.Status}
	}
	return result, nil
}

func firstLine(output []byte) string {
	s := strings.TrimSpace(string(output))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
