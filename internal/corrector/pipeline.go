package corrector

import (
	"fmt"
	"strconv"
	"strings"

	"oops/internal/patterns"
	"oops/internal/similarity"
)

// decide runs the pipeline. Callers hold the read lock.
func (e *Engine) decide(line string) (*Correction, Stage) {
	line = normalize(line)
	if line == "" {
		return nil, StageNone
	}
	tokens := strings.Fields(line)
	base := tokens[0]

	value, lineLearned := e.learned.Get(line)
	if !lineLearned && (e.corpus.Contains(line) || e.corpus.Contains(base)) {
		return nil, StageExact
	}

	if lineLearned {
		return &Correction{
			Original:    line,
			Corrected:   value,
			Stage:       StageLearnedLine,
			Confidence:  1,
			Explanation: fmt.Sprintf("you corrected %q to %q before", line, value),
		}, StageLearnedLine
	}

	if value, ok := e.learned.Get(base); ok {
		return e.fromLearnedBase(line, base, value, tokens[1:])
	}

	return e.structural(line, base, tokens[1:])
}

// fromLearnedBase substitutes a confirmed command and then corrects the
// remaining tokens against its vocabulary.
func (e *Engine) fromLearnedBase(line, base, value string, rest []string) (*Correction, Stage) {
	command := firstToken(value)
	fixed, fixes := e.correctTokens(command, rest)

	corrected := value + line[len(base):]
	if len(fixes) > 0 {
		corrected = strings.TrimSpace(value + " " + strings.Join(fixed, " "))
	}
	if corrected == line {
		return nil, StageNone
	}

	all := append([]TokenFix{{Original: base, Corrected: value, Score: 1}}, fixes...)
	return &Correction{
		Original:    line,
		Corrected:   corrected,
		Stage:       StageLearnedBase,
		Fixes:       all,
		Confidence:  confidence(all),
		Explanation: explain(all),
	}, StageLearnedBase
}

// structural matches the command against the corpus and each remaining
// token against the command's learned vocabulary.
func (e *Engine) structural(line, base string, rest []string) (*Correction, Stage) {
	command, ok := e.corpus.Closest(base, e.cfg.Threshold)
	if !ok {
		return nil, StageNone
	}

	fixed, fixes := e.correctTokens(command, rest)
	corrected := strings.TrimSpace(command + " " + strings.Join(fixed, " "))
	if corrected == line {
		return nil, StageNone
	}

	var all []TokenFix
	if command != base {
		all = append(all, TokenFix{Original: base, Corrected: command, Score: similarity.Score(base, command)})
	}
	all = append(all, fixes...)
	return &Correction{
		Original:    line,
		Corrected:   corrected,
		Stage:       StageStructural,
		Fixes:       all,
		Confidence:  confidence(all),
		Explanation: explain(all),
	}, StageStructural
}

// correctTokens corrects flags and arguments of command. Tokens that need
// no change, dash tokens that are not flags, and path or number-like tokens
// are kept as typed.
func (e *Engine) correctTokens(command string, tokens []string) ([]string, []TokenFix) {
	out := make([]string, len(tokens))
	var fixes []TokenFix

	for i, tok := range tokens {
		out[i] = tok
		head, suffix := splitSuffix(tok)
		if head == "" {
			continue
		}

		var (
			match string
			ok    bool
		)
		switch {
		case patterns.IsFlag(head):
			match, ok = e.patterns.FindSimilarFlag(command, head, e.cfg.FlagThreshold)
		case strings.HasPrefix(head, "-"):
			// "-", "--" and other dash tokens are kept as typed
			continue
		case looksLikePathOrNumber(head):
			continue
		default:
			match, ok = e.patterns.FindSimilarArgument(command, head)
		}
		if !ok || match == head {
			continue
		}

		out[i] = match + suffix
		fixes = append(fixes, TokenFix{Original: head, Corrected: match, Score: similarity.Score(head, match)})
	}
	return out, fixes
}

// splitSuffix splits tok at the first ':', '=' or '@' after its first
// byte, so "--outpt=json" compares as "--outpt" and "orgin:main" as
// "orgin".
func splitSuffix(tok string) (head, suffix string) {
	if i := strings.IndexAny(tok[min(1, len(tok)):], ":=@"); i >= 0 {
		i++
		return tok[:i], tok[i:]
	}
	return tok, ""
}

func looksLikePathOrNumber(tok string) bool {
	if strings.ContainsAny(tok, `/\.~`) || strings.Contains(tok, "://") {
		return true
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func confidence(fixes []TokenFix) float64 {
	if len(fixes) == 0 {
		return 1
	}
	var sum float64
	for _, f := range fixes {
		sum += f.Score
	}
	return sum / float64(len(fixes))
}

func explain(fixes []TokenFix) string {
	parts := make([]string, 0, len(fixes))
	for _, f := range fixes {
		parts = append(parts, fmt.Sprintf("'%s' → '%s'", f.Original, f.Corrected))
	}
	return "Fixed: " + strings.Join(parts, ", ")
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}

func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
