package profile

import (
	"regexp"
	"strings"
)

var (
	emailComma   = regexp.MustCompile(`[\s\p{Zs}]*,[\s\p{Zs}]*`)
	emailAt      = regexp.MustCompile(`[\s\p{Zs}]*@[\s\p{Zs}]*`)
	emailDot     = regexp.MustCompile(`[\s\p{Zs}]*\.[\s\p{Zs}]*`)
	twitterURL   = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(x|twitter)\.com/`)
	emailReplace = strings.NewReplacer(
		"[at]", "@", "[dot]", ".",
		"(at)", "@", "(dot)", ".",
		"{at}", "@", "{dot}", ".",
		"\r\n", " ", "\n", " ",
	)
)

// CleanEmail turns obfuscated addresses such as "abc[at]sansad[dot]nic[dot]in"
// into plain ones. Several addresses are joined with ", ".
func CleanEmail(raw string) string {
	s := strings.TrimSpace(emailReplace.Replace(raw))
	if s == "" {
		return ""
	}
	s = emailComma.ReplaceAllString(s, ", ")
	s = emailAt.ReplaceAllString(s, "@")
	s = emailDot.ReplaceAllString(s, ".")
	return strings.Trim(s, ", ")
}

// TwitterURL returns the lowercased profile URL of a handle. Values that
// already point at x.com or twitter.com are kept as they are, lowercased.
func TwitterURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if twitterURL.MatchString(s) {
		return s
	}
	return "https://x.com/" + strings.TrimPrefix(s, "@")
}
