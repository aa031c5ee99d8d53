package narrative

import (
	"fmt"
	"strings"

	"github.com/newthinker/folio/internal/core"
)

// maxNewsChars bounds the headline block in the prompt.
const maxNewsChars = 4000

func buildPrompt(in Input) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Position: %s (%s)\n\n", in.AssetName, in.Ticker))
	sb.WriteString(fmt.Sprintf("- Units: %s\n", number(core.Known(in.Units))))
	sb.WriteString(fmt.Sprintf("- Average Cost: %s\n", number(core.Known(in.AvgPrice))))
	sb.WriteString(fmt.Sprintf("- Current Price: %s\n", number(in.CurrentPrice)))
	sb.WriteString(fmt.Sprintf("- 52W High: %s\n", number(in.High52w)))
	sb.WriteString(fmt.Sprintf("- 52W Low: %s\n", number(in.Low52w)))
	sb.WriteString("\n")

	sb.WriteString("## Thesis:\n")
	if t := strings.TrimSpace(in.Thesis); t != "" {
		sb.WriteString(t)
	} else {
		sb.WriteString("No thesis recorded.")
	}
	sb.WriteString("\n\n")

	if len(in.News) > 0 {
		sb.WriteString("## Recent News:\n")
		news := ""
		for _, h := range in.News {
			line := fmt.Sprintf("- %s\n", h)
			if len(news)+len(line) > maxNewsChars {
				break
			}
			news += line
		}
		sb.WriteString(news)
		sb.WriteString("\n")
	}

	sb.WriteString("## Task:\n")
	sb.WriteString("1. Say whether recent price action and news strengthen or weaken the thesis.\n")
	sb.WriteString("2. Recommend one action: ACCUMULATE, HOLD, TRIM or EXIT.\n")
	sb.WriteString("3. List up to five signals to monitor.\n")
	sb.WriteString("Values marked N/A are unknown; do not assume they are zero.\n")
	sb.WriteString("\nRespond with JSON containing: commentary, action, signals_to_monitor.\n")

	return sb.String()
}

// number renders a prompt value, N/A when unknown.
func number(f core.Float) string {
	v, ok := f.Get()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

const systemPrompt = `You are an investment analyst reviewing one holding in a long-term portfolio. Your role is to check the owner's thesis against the current position and market data.

Consider:
1. Where the price sits inside its 52-week range
2. Profit or loss against the average cost
3. Whether the thesis still holds

Always respond with valid JSON in this format:
{
  "commentary": "two to four sentences",
  "action": "ACCUMULATE" | "HOLD" | "TRIM" | "EXIT",
  "signals_to_monitor": ["signal 1", "signal 2"]
}

Be conservative when uncertain. HOLD is appropriate when data is missing or mixed.`
