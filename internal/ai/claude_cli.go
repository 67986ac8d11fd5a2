package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/progress"
)

// cleanEnv returns os.Environ() with the CLI's own session vars removed
// so a nested invocation is not refused.
func cleanEnv() []string {
	blocked := map[string]bool{
		"CLAUDECODE":             true,
		"CLAUDE_CODE_ENTRYPOINT": true,
	}
	var env []string
	for _, e := range os.Environ() {
		key, _, _ := strings.Cut(e, "=")
		if !blocked[key] {
			env = append(env, e)
		}
	}
	return env
}

// ClaudeCLI shells out to the `claude` binary in print mode.
type ClaudeCLI struct {
	Model  string
	Binary string
	logger *zap.Logger
}

func NewClaudeCLI(model string, logger *zap.Logger) *ClaudeCLI {
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = "haiku"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaudeCLI{Model: model, Binary: "claude", logger: logger}
}

func (c *ClaudeCLI) Motivate(ctx context.Context, sum progress.Summary) (*Motivation, error) {
	args := []string{
		"-p", buildUserPrompt(sum),
		"--output-format", "json",
		"--model", c.Model,
		"--system-prompt", systemPrompt,
		"--json-schema", motivationSchema(),
		"--no-session-persistence",
	}

	c.logger.Debug("invoking claude CLI", zap.String("model", c.Model), zap.Int("subjects", len(sum.Subjects)))

	result, err := c.run(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseMotivation(result)
}

func (c *ClaudeCLI) run(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Env = cleanEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	c.logger.Debug("claude CLI finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Error(err))

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude CLI timed out after %s", elapsed.Truncate(time.Second))
		}
		return "", fmt.Errorf("running claude CLI: %w (stderr: %s)", err, truncateStr(stderr.String(), 500))
	}

	return unwrapEnvelope(stdout.Bytes()), nil
}

// unwrapEnvelope extracts the payload from `--output-format json` output,
// preferring structured_output over result. Anything else is returned as is.
func unwrapEnvelope(out []byte) string {
	var env struct {
		Result           json.RawMessage `json:"result"`
		StructuredOutput json.RawMessage `json:"structured_output"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		return string(out)
	}

	if len(env.StructuredOutput) > 0 && env.StructuredOutput[0] == '{' {
		return string(env.StructuredOutput)
	}

	if len(env.Result) > 0 {
		var s string
		if err := json.Unmarshal(env.Result, &s); err == nil && s != "" {
			return s
		}
		if env.Result[0] == '{' {
			return string(env.Result)
		}
	}
	return string(out)
}
