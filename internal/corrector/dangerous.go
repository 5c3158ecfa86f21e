package corrector

import (
	"fmt"
	"regexp"
	"strings"
)

// Danger describes why a command line is destructive.
type Danger struct {
	Command string
	Reason  string
}

var dangerousList = []string{
	"rm -rf /", "rm -rf /*", "rm -rf ~", "> /dev/sda", "mkfs.ext3 /dev/sda",
	"mkfs.ext4 /dev/sda", "dd if=/dev/zero of=/dev/sda", ":(){ :|:& };:",
	"chmod -R 777 /", "chown -R nobody /",
}

var dangerousPatterns = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`(?i)\brm\s+(-[a-z]*r[a-z]*f[a-z]*|-[a-z]*f[a-z]*r[a-z]*)\s+(/|/\*|~/?)\s*$`), "this deletes the root or home directory"},
	{regexp.MustCompile(`>\s*/dev/(sd[a-z]|nvme\d+n\d+|hd[a-z])`), "this overwrites a disk device"},
	{regexp.MustCompile(`(?i)\bmkfs(\.\w+)?\s+/dev/`), "this formats a disk device"},
	{regexp.MustCompile(`(?i)\bdd\s+.*\bof=/dev/(sd[a-z]|nvme\d+n\d+|hd[a-z])`), "this overwrites a disk device"},
}

// CheckDangerous reports whether line would destroy data if run. The
// engine never refuses to correct such a line; callers decide whether to
// print it.
func CheckDangerous(line string) (Danger, bool) {
	lower := strings.ToLower(normalize(line))
	for _, p := range dangerousList {
		if lower == p || strings.HasPrefix(lower, p+" ") {
			return Danger{Command: line, Reason: fmt.Sprintf("'%s' can destroy your system", p)}, true
		}
	}
	for _, p := range dangerousPatterns {
		if p.re.MatchString(line) {
			return Danger{Command: line, Reason: p.reason}, true
		}
	}
	return Danger{}, false
}
