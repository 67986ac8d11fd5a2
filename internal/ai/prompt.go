package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/christopherklint97/studyr/internal/progress"
)

const systemPrompt = `You are a study coach. Given a student's progress on an exam study plan,
reply with a short motivational quote that fits their situation.

Rules:
- Keep the quote under 30 words.
- Mention a subject only if it helps.
- Reply with JSON only: {"quote": "...", "author": "..."}.`

var (
	schemaOnce sync.Once
	schemaText string
)

// motivationSchema is the JSON Schema of Motivation as a compact string.
func motivationSchema() string {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{Anonymous: true, ExpandedStruct: true}
		raw, err := json.Marshal(r.Reflect(&Motivation{}))
		if err != nil {
			panic(fmt.Sprintf("reflecting motivation schema: %v", err))
		}
		schemaText = string(raw)
	})
	return schemaText
}

func buildUserPrompt(sum progress.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall completion: %d%% (%d of %d sessions)\n", sum.CompletionRate, sum.Completed, sum.Total)

	if len(sum.Subjects) > 0 {
		b.WriteString("\nSubjects:\n")
		for _, sp := range sum.Subjects {
			fmt.Fprintf(&b, "- %s: %d/%d sessions done", sp.Subject, sp.Completed, sp.Total)
			if sp.Next != nil {
				fmt.Fprintf(&b, ", next on %s", sp.Next.StartTime.Local().Format("Mon Jan 2"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func parseMotivation(raw string) (*Motivation, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var m Motivation
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &m); err != nil {
		return nil, fmt.Errorf("parsing motivation: %w (raw: %s)", err, truncateStr(raw, 500))
	}
	if m.Quote == "" {
		return nil, fmt.Errorf("parsing motivation: empty quote")
	}
	if m.Author == "" {
		m.Author = "studyr"
	}
	return &m, nil
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
