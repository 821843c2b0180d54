package shellenv

import "strings"

func quoterFor(d dialect) Quoter {
	switch d {
	case dialectFish:
		return quoteFish
	case dialectPowerShell:
		return quotePowerShell
	case dialectCmd:
		return quoteCmd
	}
	return quotePOSIX
}

// quotePOSIX wraps s in single quotes for sh-compatible shells.
func quotePOSIX(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// quoteFish wraps s in single quotes; fish honours \\ and \' inside them.
func quoteFish(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// quotePowerShell wraps s in a verbatim string literal.
func quotePowerShell(s string) string {
	r := strings.NewReplacer("'", "''", "‘", "‘‘", "’", "’’")
	return "'" + r.Replace(s) + "'"
}

// quoteCmd wraps s in double quotes and escapes cmd.exe metacharacters.
func quoteCmd(s string) string {
	r := strings.NewReplacer(`"`, `""`, "%", "^%", "!", "^!")
	return `"` + r.Replace(s) + `"`
}
