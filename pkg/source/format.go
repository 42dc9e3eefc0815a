package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// abbrevLen is the length of %h and %p hashes.
const abbrevLen = 7

const (
	isoLayout    = "2006-01-02 15:04:05 -0700"
	strictLayout = "2006-01-02T15:04:05-07:00"
	gitLayout    = "Mon Jan 2 15:04:05 2006 -0700"
)

// commitFields holds what the placeholders of one commit expand to.
type commitFields struct {
	commit *object.Commit
	// decorations is the %d text without the surrounding " (...)".
	decorations string
	now         time.Time
}

// expand renders a git log format string for one commit. It supports the
// placeholders gitdot's formats and common label specs use:
//
//	%h %H %p %P %d %D %s %b %B %an %ae %ad %ai %aI %ar %cn %ce %cd %ci %cI %cr %n %%
//
// Unknown placeholders are copied through unchanged, as git does.
func expand(format string, f commitFields) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b.WriteByte(format[i])
			continue
		}
		code := format[i+1]
		if (code == 'a' || code == 'c') && i+2 < len(format) {
			if v, ok := f.person(code, format[i+2]); ok {
				b.WriteString(v)
				i += 2
				continue
			}
		}
		if v, ok := f.simple(code); ok {
			b.WriteString(v)
			i++
			continue
		}
		b.WriteByte('%')
	}
	return b.String()
}

func (f commitFields) simple(code byte) (string, bool) {
	c := f.commit
	switch code {
	case 'n':
		return "\n", true
	case '%':
		return "%", true
	case 'H':
		return c.Hash.String(), true
	case 'h':
		return abbrev(c.Hash.String()), true
	case 'P', 'p':
		parts := make([]string, len(c.ParentHashes))
		for i, p := range c.ParentHashes {
			parts[i] = p.String()
			if code == 'p' {
				parts[i] = abbrev(parts[i])
			}
		}
		return strings.Join(parts, " "), true
	case 'd':
		if f.decorations == "" {
			return "", true
		}
		return " (" + f.decorations + ")", true
	case 'D':
		return f.decorations, true
	case 's':
		subject, _ := splitMessage(c.Message)
		return subject, true
	case 'b':
		_, body := splitMessage(c.Message)
		return body, true
	case 'B':
		return strings.TrimRight(c.Message, "\n"), true
	}
	return "", false
}

func (f commitFields) person(who, field byte) (string, bool) {
	sig := f.commit.Author
	if who == 'c' {
		sig = f.commit.Committer
	}
	switch field {
	case 'n':
		return sig.Name, true
	case 'e':
		return sig.Email, true
	case 'd':
		return sig.When.Format(gitLayout), true
	case 'i':
		return sig.When.Format(isoLayout), true
	case 'I':
		return sig.When.Format(strictLayout), true
	case 'r':
		return relative(f.now, sig.When), true
	}
	return "", false
}

func abbrev(h string) string {
	if len(h) > abbrevLen {
		return h[:abbrevLen]
	}
	return h
}

// splitMessage splits a commit message into its subject (the first
// paragraph, joined onto one line) and body (the rest).
func splitMessage(msg string) (subject, body string) {
	msg = strings.TrimLeft(msg, "\n")
	head, rest, _ := strings.Cut(msg, "\n\n")
	subject = strings.Join(strings.Fields(strings.ReplaceAll(head, "\n", " ")), " ")
	body = strings.TrimRight(strings.TrimLeft(rest, "\n"), "\n")
	if body != "" {
		body += "\n"
	}
	return subject, body
}

// relative renders t the way git's %cr does: "3 days ago".
func relative(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		return "in the future"
	}
	plural := func(n int64, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	secs := int64(d / time.Second)
	switch {
	case secs < 90:
		return plural(secs, "second")
	case secs < 90*60:
		return plural((secs+30)/60, "minute")
	case secs < 36*3600:
		return plural((secs+1800)/3600, "hour")
	case secs < 14*86400:
		return plural((secs+43200)/86400, "day")
	case secs < 10*7*86400:
		return plural((secs+302400)/(7*86400), "week")
	case secs < 365*86400:
		return plural((secs+15*86400)/(30*86400), "month")
	default:
		return plural((secs+183*86400)/(365*86400), "year")
	}
}
