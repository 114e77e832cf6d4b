package analysis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/domain"
)

func TestClassify(t *testing.T) {
	n := analysis.NewNormalizer("US")

	cases := []struct {
		Name     string
		Input    string
		Expected domain.InputClassification
	}{
		{"E.164 number", "+14155551234", domain.ClassPhoneNumber},
		{"formatted number", "(415) 555-1234", domain.ClassPhoneNumber},
		{"dotted number", "415.555.1234", domain.ClassPhoneNumber},
		{"fifteen digits", "+123456789012345", domain.ClassPhoneNumber},
		{"nine digits", "415-555-123", domain.ClassFreeText},
		{"sixteen digits", "+1234567890123456", domain.ClassFreeText},
		{"https url", "https://fakebank.com/login", domain.ClassURL},
		{"http url", "http://fakebank.com", domain.ClassURL},
		{"bare host", "fakebank.com", domain.ClassURL},
		{"www host with path", "www.fakebank.com/verify?id=1", domain.ClassURL},
		{"upper case scheme", "HTTPS://FakeBank.COM/Login", domain.ClassURL},
		{"url with many digits", "https://site.com/12345678901", domain.ClassURL},
		{"ip address", "http://10.0.0.1/admin", domain.ClassURL},
		{"single word", "bitcoin", domain.ClassFreeText},
		{"sentence", "You won a lottery! Claim your prize now", domain.ClassFreeText},
		{"decimal number", "3.14", domain.ClassFreeText},
		{"text with a number", "call 4155551234 now", domain.ClassFreeText},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, n.Classify(tc.Input))
		})
	}
}

func TestPhoneDigitBounds(t *testing.T) {
	n := analysis.NewNormalizer("US")
	digits := "123456789012345678"

	for length := 1; length <= len(digits); length++ {
		input := "+" + digits[:length]
		err := analysis.ValidatePhoneNumber(input)

		if length >= 10 && length <= 15 {
			assert.Equal(t, domain.ClassPhoneNumber, n.Classify(input), "length %d", length)
			assert.NoError(t, err, "length %d", length)
			continue
		}
		assert.NotEqual(t, domain.ClassPhoneNumber, n.Classify(input), "length %d", length)
		require.Error(t, err, "length %d", length)
		assert.True(t, domain.IsValidation(err))
	}
}

func TestValidatePhoneNumberRejectsNonPhones(t *testing.T) {
	for _, input := range []string{"", "   ", "fakebank.com", "+1 415 555 CALL"} {
		err := analysis.ValidatePhoneNumber(input)
		require.Error(t, err, input)
		assert.True(t, domain.IsValidation(err), input)
	}
}

func TestPhoneCanonicalForms(t *testing.T) {
	n := analysis.NewNormalizer("US")
	forms := n.CanonicalForms("+14155551234", domain.ClassPhoneNumber)

	require.NotEmpty(t, forms)
	assert.Equal(t, "4155551234", forms[0], "main number comes first")
	for _, want := range []string{
		"4155551234",
		"14155551234",
		"(415) 555-1234",
		"415-555-1234",
		"415.555.1234",
		"+14155551234",
	} {
		assert.Contains(t, forms, want)
	}
	assertNoDuplicates(t, forms)
}

func TestPhoneCanonicalFormsStripCountryPrefix(t *testing.T) {
	n := analysis.NewNormalizer("US")
	forms := n.CanonicalForms("+56 9 1234 5678", domain.ClassPhoneNumber)

	assert.Equal(t, "6912345678", forms[0], "main number is the last ten digits")
	assert.Contains(t, forms, "56912345678")
	assert.Contains(t, forms, "+56912345678")
	assert.Contains(t, forms, "+56 9 1234 5678")
}

func TestURLCanonicalForms(t *testing.T) {
	n := analysis.NewNormalizer("US")
	raw := "https://www.FakeBank.com/login/#step2"
	forms := n.CanonicalForms(raw, domain.ClassURL)

	require.NotEmpty(t, forms)
	assert.Equal(t, "fakebank.com/login#step2", forms[0])
	for _, want := range []string{
		"fakebank.com/login",
		"http://fakebank.com/login",
		"https://fakebank.com/login",
		"www.fakebank.com/login",
		"https://fakebank.com/login#step2",
		"fakebank.com",
		raw,
	} {
		assert.Contains(t, forms, want)
	}
	assertNoDuplicates(t, forms)
}

func TestURLCanonicalFormsWithQuery(t *testing.T) {
	n := analysis.NewNormalizer("US")
	raw := "https://fakebank.com/login?session=1#top"
	forms := n.CanonicalForms(raw, domain.ClassURL)

	require.NotEmpty(t, forms)
	assert.Equal(t, "fakebank.com/login?session=1#top", forms[0])
	for _, want := range []string{
		"fakebank.com/login?session=1",
		"fakebank.com/login#top",
		"fakebank.com/login",
		"http://fakebank.com/login",
		"https://fakebank.com/login",
		"www.fakebank.com/login",
		"https://fakebank.com/login?session=1",
		"fakebank.com",
	} {
		assert.Contains(t, forms, want)
	}
	assertNoDuplicates(t, forms)
}

func TestFreeTextHasNoCanonicalForms(t *testing.T) {
	n := analysis.NewNormalizer("US")
	assert.Empty(t, n.CanonicalForms("hello there", domain.ClassFreeText))
}

func TestCanonicalFormsIdempotent(t *testing.T) {
	n := analysis.NewNormalizer("US")

	for _, input := range []string{
		"+14155551234",
		"(415) 555-1234",
		"+44 20 7946 0958",
		"https://fakebank.com/login",
		"http://www.Example.org/a/b/?q=1#frag",
		"example.com:8080/path/",
	} {
		t.Run(input, func(t *testing.T) {
			first := n.CanonicalForms(input, n.Classify(input))
			require.NotEmpty(t, first)

			again := n.CanonicalForms(first[0], n.Classify(first[0]))
			assert.Contains(t, again, first[0])
		})
	}
}

func TestCountryCode(t *testing.T) {
	n := analysis.NewNormalizer("US")
	assert.Equal(t, "CL", n.CountryCode("+56912345678"))
	assert.Equal(t, "", n.CountryCode("not a number"))
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "fakebank.com", analysis.Hostname("https://www.fakebank.com/login"))
	assert.Equal(t, "", analysis.Hostname("no host here"))
}

func assertNoDuplicates(t *testing.T, forms []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, f := range forms {
		assert.False(t, seen[f], "duplicate form %q in %s", f, strings.Join(forms, ", "))
		seen[f] = true
	}
}
