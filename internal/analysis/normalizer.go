package analysis

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/publicsuffix"

	"github.com/rgdevment/scam-shield/internal/domain"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
	mainNumberLen  = 10
)

// Normalizer classifies raw input and expands it into equivalent lookup keys.
// It is a pure function of its input.
type Normalizer struct {
	defaultRegion string
}

// NewNormalizer returns a Normalizer that parses numbers without a leading
// '+' as belonging to defaultRegion (ISO 3166-1 alpha-2).
func NewNormalizer(defaultRegion string) *Normalizer {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Normalizer{defaultRegion: strings.ToUpper(defaultRegion)}
}

// Classify tries phone number, then URL, then falls back to free text.
func (n *Normalizer) Classify(input string) domain.InputClassification {
	if _, ok := phoneDigits(input); ok {
		return domain.ClassPhoneNumber
	}
	if _, ok := parseURL(input); ok {
		return domain.ClassURL
	}
	return domain.ClassFreeText
}

// CanonicalForms returns the deduplicated lookup keys for input under class.
// Free text has no canonical forms.
func (n *Normalizer) CanonicalForms(input string, class domain.InputClassification) []string {
	switch class {
	case domain.ClassPhoneNumber:
		return n.phoneForms(input)
	case domain.ClassURL:
		return urlForms(input)
	default:
		return nil
	}
}

// ValidatePhoneNumber rejects input that is not shaped like a phone number
// or whose digit count is outside [10, 15].
func ValidatePhoneNumber(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.NewValidationError("phone", "phone number is required")
	}
	if !phoneShaped(trimmed) {
		return domain.NewValidationError("phone", "%q is not a phone number", trimmed)
	}
	digits := onlyDigits(trimmed)
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return domain.NewValidationError("phone",
			"phone number must have between %d and %d digits, got %d", minPhoneDigits, maxPhoneDigits, len(digits))
	}
	return nil
}

// LooksLikePhone reports whether input is made only of digits and phone separators,
// whatever its length.
func LooksLikePhone(input string) bool {
	return phoneShaped(strings.TrimSpace(input))
}

// CountryCode resolves the ISO region of a phone number, or "" when unknown.
func (n *Normalizer) CountryCode(input string) string {
	num, err := n.parsePhone(input)
	if err != nil {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(num)
}

func (n *Normalizer) phoneForms(input string) []string {
	digits, ok := phoneDigits(input)
	if !ok {
		return nil
	}
	main := digits[len(digits)-mainNumberLen:]
	area, exchange, line := main[:3], main[3:6], main[6:]

	forms := newOrderedSet()
	forms.add(main)
	forms.add(digits)
	forms.add(fmt.Sprintf("(%s) %s-%s", area, exchange, line))
	forms.add(fmt.Sprintf("%s-%s-%s", area, exchange, line))
	forms.add(fmt.Sprintf("%s.%s.%s", area, exchange, line))
	forms.add("+1" + main)
	forms.add("1" + main)
	if num, err := n.parsePhone(input); err == nil {
		forms.add(phonenumbers.Format(num, phonenumbers.E164))
	}
	forms.add(strings.TrimSpace(input))
	return forms.list()
}

func (n *Normalizer) parsePhone(input string) (*phonenumbers.PhoneNumber, error) {
	trimmed := strings.TrimSpace(input)
	region := n.defaultRegion
	if strings.HasPrefix(trimmed, "+") {
		region = ""
	}
	return phonenumbers.Parse(trimmed, region)
}

func urlForms(input string) []string {
	u, ok := parseURL(input)
	if !ok {
		return nil
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	path := host + strings.TrimRight(u.EscapedPath(), "/")
	frag := u.EscapedFragment()

	// Query forms come first; the bare host+path forms always follow so
	// a report stored without its query string still matches.
	bases := newOrderedSet()
	if u.RawQuery != "" {
		withQuery := path + "?" + u.RawQuery
		if frag != "" {
			bases.add(withQuery + "#" + frag)
		}
		bases.add(withQuery)
	}
	if frag != "" {
		bases.add(path + "#" + frag)
	}
	bases.add(path)

	forms := newOrderedSet()
	for _, b := range bases.list() {
		forms.add(b)
	}
	for _, prefix := range []string{"http://", "https://", "www."} {
		for _, b := range bases.list() {
			forms.add(prefix + b)
		}
	}
	forms.add(host)
	forms.add(strings.TrimSpace(input))
	return forms.list()
}

// Hostname returns the www-stripped host of a URL input.
func Hostname(input string) string {
	u, ok := parseURL(input)
	if !ok {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// phoneDigits returns the digit string of a phone-shaped input within bounds.
func phoneDigits(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if !phoneShaped(trimmed) {
		return "", false
	}
	digits := onlyDigits(trimmed)
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	return digits, true
}

// phoneShaped accepts digits with the usual separators and an optional leading '+'.
func phoneShaped(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return hasDigit
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseURL(input string) (*url.URL, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return nil, false
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil, false
	}
	if !validHost(u.Hostname()) {
		return nil, false
	}
	return u, true
}

func validHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				return false
			}
		}
	}
	tld := labels[len(labels)-1]
	for _, r := range tld {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) list() []string {
	return s.items
}
