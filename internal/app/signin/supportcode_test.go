package signin

import (
	"regexp"
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

var supportCodeRE = regexp.MustCompile(`^(GGL|APL)-(CFG|RDY|TOKN|SRV|EXCP)-\d{3}-\d{12}-[0-9A-Z]{6}$`)

func TestSupportCode_Shape(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 4, 9, 7, 33, 0, time.UTC)
	got := SupportCode(domain.ProviderGoogle, StageServer, 409, "email already linked", at)
	if !supportCodeRE.MatchString(got) {
		t.Fatalf("SupportCode()=%q does not match %s", got, supportCodeRE)
	}
	if got[:len("GGL-SRV-409-202605040907-")] != "GGL-SRV-409-202605040907-" {
		t.Fatalf("prefix of %q", got)
	}
}

func TestSupportCode_DeterministicWithinMinute(t *testing.T) {
	t.Parallel()

	a := time.Date(2026, 5, 4, 9, 7, 1, 0, time.UTC)
	b := a.Add(58 * time.Second)
	c := a.Add(time.Minute)

	codeA := SupportCode(domain.ProviderApple, StageToken, 0, "no identity token", a)
	codeB := SupportCode(domain.ProviderApple, StageToken, 0, "no identity token", b)
	codeC := SupportCode(domain.ProviderApple, StageToken, 0, "no identity token", c)

	if codeA != codeB {
		t.Fatalf("same minute: %q != %q", codeA, codeB)
	}
	if codeA == codeC {
		t.Fatalf("next minute produced the same code %q", codeC)
	}
}

func TestSupportCode_UsesUTC(t *testing.T) {
	t.Parallel()

	utc := time.Date(2026, 5, 4, 9, 7, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("UTC+5", 5*3600))
	if SupportCode(domain.ProviderGoogle, StageConfig, 0, "", utc) != SupportCode(domain.ProviderGoogle, StageConfig, 0, "", local) {
		t.Fatal("zone changed the code")
	}
}

func TestSupportCode_InputsChangeDigest(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 4, 9, 7, 0, 0, time.UTC)
	base := SupportCode(domain.ProviderGoogle, StageServer, 500, "boom", at)
	for name, other := range map[string]string{
		"stage":  SupportCode(domain.ProviderGoogle, StageException, 500, "boom", at),
		"status": SupportCode(domain.ProviderGoogle, StageServer, 502, "boom", at),
		"reason": SupportCode(domain.ProviderGoogle, StageServer, 500, "bang", at),
	} {
		if other[len(other)-6:] == base[len(base)-6:] {
			t.Errorf("%s: digest unchanged (%q vs %q)", name, other, base)
		}
	}
}

func TestSupportCode_OutOfRangeStatusIsZero(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 4, 9, 7, 0, 0, time.UTC)
	if got, want := SupportCode(domain.ProviderApple, StageServer, 1200, "", at), SupportCode(domain.ProviderApple, StageServer, 0, "", at); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "000000"},
		{"a", "00002P"},
		{"ab", "0002E9"},
	}
	for _, tt := range tests {
		if got := digest(tt.in); got != tt.want {
			t.Errorf("digest(%q)=%q want %q", tt.in, got, tt.want)
		}
	}
}
