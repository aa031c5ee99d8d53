package narrative

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/llm"
)

type response struct {
	Commentary string   `json:"commentary"`
	Action     string   `json:"action"`
	Signals    []string `json:"signals_to_monitor"`
	Decision   string   `json:"decision"`
}

var (
	// "Action: HOLD", "**Decision:** BUY", "Recommendation - TRIM"
	labelledAction = regexp.MustCompile(`(?i)(?:action|decision|recommendation|verdict)\W{0,6}(ACCUMULATE|HOLD|TRIM|EXIT|BUY|SELL|AVOID)\b`)
	boldAction     = regexp.MustCompile(`\*\*(ACCUMULATE|HOLD|TRIM|EXIT|BUY|SELL|AVOID)\*\*`)
	bulletLine     = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)
)

// parseResponse extracts a result from model output. Structured JSON is
// preferred; free-form markdown is accepted when it carries a tagged
// action. Output with no recognizable action is rejected.
func parseResponse(content string) (Result, error) {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return Result{}, fmt.Errorf("empty response")
	}
	body := llm.StripCodeFence(raw)

	var resp response
	if err := json.Unmarshal([]byte(body), &resp); err == nil {
		tag := resp.Action
		if tag == "" {
			tag = resp.Decision
		}
		action, ok := core.ParseAction(tag)
		if !ok {
			return Result{}, fmt.Errorf("unrecognized action %q", tag)
		}
		r := Result{
			Commentary: strings.TrimSpace(resp.Commentary),
			Action:     action,
			Signals:    cleanSignals(resp.Signals),
			Raw:        raw,
		}
		r.Markdown = r.render()
		return r, nil
	}

	return parseMarkdown(raw)
}

func parseMarkdown(raw string) (Result, error) {
	tag := ""
	if m := labelledAction.FindStringSubmatch(raw); m != nil {
		tag = m[1]
	} else if m := boldAction.FindStringSubmatch(raw); m != nil {
		tag = m[1]
	}
	action, ok := core.ParseAction(tag)
	if !ok {
		return Result{}, fmt.Errorf("no action tag in response")
	}

	var commentary []string
	var signals []string
	inSignals := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(trimmed, "#") || (strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**")):
			inSignals = strings.Contains(lower, "signal") || strings.Contains(lower, "monitor") || strings.Contains(lower, "watch")
			continue
		case labelledAction.MatchString(trimmed):
			continue
		}
		if inSignals {
			if m := bulletLine.FindStringSubmatch(line); m != nil {
				signals = append(signals, m[1])
			}
			continue
		}
		if trimmed != "" {
			commentary = append(commentary, trimmed)
		}
	}

	r := Result{
		Commentary: strings.Join(commentary, " "),
		Action:     action,
		Signals:    cleanSignals(signals),
		Raw:        raw,
	}
	r.Markdown = r.render()
	return r, nil
}

func cleanSignals(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.Trim(s, "*"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
