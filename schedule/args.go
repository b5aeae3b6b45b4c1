package schedule

import "strings"

// ParseArgs splits a job's argument string into positional arguments and
// key/value options for an in-process command invocation.
//
// Tokens are whitespace separated. A token containing '=' becomes an
// option, split on the first '=' only, so the option key itself cannot
// contain '='. All other tokens are positional.
func ParseArgs(argString string) (args []string, opts map[string]string) {
	opts = make(map[string]string)
	for _, token := range strings.Fields(argString) {
		if i := strings.Index(token, "="); i >= 0 {
			opts[token[:i]] = token[i+1:]
		} else {
			args = append(args, token)
		}
	}
	return args, opts
}
