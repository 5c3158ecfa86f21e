// Package shell generates the integration scripts that feed finished
// commands into learning and rerun the last command corrected.
package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Shell is a supported interactive shell.
type Shell string

const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
	Fish Shell = "fish"
)

// ErrUnsupported is returned for shells without an integration script.
var ErrUnsupported = errors.New("unsupported shell")

// Parse accepts a shell name or a path to its binary.
func Parse(name string) (Shell, error) {
	switch sh := Shell(filepath.Base(strings.TrimSpace(name))); sh {
	case Bash, Zsh, Fish:
		return sh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
}

// Detect reads the login shell from $SHELL.
func Detect() (Shell, error) {
	return Parse(os.Getenv("SHELL"))
}

// Script renders the integration for sh. program is the binary to call and
// alias the name of the function that corrects the previous command.
func Script(sh Shell, program, alias string) (string, error) {
	tmpl, ok := scripts[sh]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, sh)
	}
	if alias == "" || strings.ContainsAny(alias, " \t;|&$'\"") {
		return "", fmt.Errorf("invalid alias %q", alias)
	}

	var b strings.Builder
	err := tmpl.Execute(&b, struct{ Program, Alias string }{program, alias})
	if err != nil {
		return "", fmt.Errorf("failed to render %s script: %w", sh, err)
	}
	return b.String(), nil
}

var scripts = map[Shell]*template.Template{
	Bash: template.Must(template.New("bash").Parse(bashScript)),
	Zsh:  template.Must(template.New("zsh").Parse(zshScript)),
	Fish: template.Must(template.New("fish").Parse(fishScript)),
}

const bashScript = `# {{.Program}} integration for bash
__{{.Program}}_observe() {
    local exit_code=$?
    local last
    last=$(HISTTIMEFORMAT= builtin history 1 | sed 's/^ *[0-9][0-9]* *//')
    if [[ -n "$last" && "$last" != "$__{{.Program}}_last" ]]; then
        __{{.Program}}_last=$last
        ( command {{.Program}} observe --status "$exit_code" -- "$last" >/dev/null 2>&1 & )
    fi
    return $exit_code
}
if [[ ";${PROMPT_COMMAND:-};" != *";__{{.Program}}_observe;"* ]]; then
    PROMPT_COMMAND="__{{.Program}}_observe${PROMPT_COMMAND:+;$PROMPT_COMMAND}"
fi

{{.Alias}}() {
    local last corrected
    last=$(builtin fc -ln -1)
    last=${last#"${last%%[![:space:]]*}"}
    if [[ "$last" == {{.Alias}} || "$last" == "{{.Alias}} "* ]]; then
        last=$(builtin fc -ln -2 -2)
    fi
    corrected=$(command {{.Program}} fix -- "$last") || return
    builtin history -s "$corrected"
    builtin eval "$corrected"
}
`

const zshScript = `# {{.Program}} integration for zsh
autoload -Uz add-zsh-hook
__{{.Program}}_observe() {
    local exit_code=$?
    local last
    last=$(builtin fc -ln -1 2>/dev/null)
    [[ -z "$last" || "$last" == "$__{{.Program}}_last" ]] && return
    __{{.Program}}_last=$last
    command {{.Program}} observe --status "$exit_code" -- "$last" >/dev/null 2>&1 &!
}
add-zsh-hook precmd __{{.Program}}_observe

{{.Alias}}() {
    local last corrected
    last=$(builtin fc -ln -1)
    last=${last#"${last%%[![:space:]]*}"}
    if [[ "$last" == {{.Alias}} || "$last" == "{{.Alias}} "* ]]; then
        last=$(builtin fc -ln -2 -2)
    fi
    corrected=$(command {{.Program}} fix -- "$last") || return
    print -s -- "$corrected"
    eval -- "$corrected"
}
`

const fishScript = `# {{.Program}} integration for fish
function __{{.Program}}_observe --on-event fish_postexec
    set -l last_status $status
    test -n "$argv[1]"; or return
    command {{.Program}} observe --status $last_status -- $argv[1] >/dev/null 2>&1 &
    disown
end

function {{.Alias}}
    set -l corrected (command {{.Program}} fix -- $history[1]); or return
    builtin history append -- $corrected
    eval $corrected
end
`
