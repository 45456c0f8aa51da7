package signin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

// Stage is where a sign-in attempt failed.
type Stage string

const (
	StageConfig    Stage = "CFG"
	StageReady     Stage = "RDY"
	StageToken     Stage = "TOKN"
	StageServer    Stage = "SRV"
	StageException Stage = "EXCP"
)

const supportTimestampLayout = "200601021504"

// SupportCode derives the code shown to users so support can correlate a report with logs:
//
//	<PROVIDER3>-<STAGE>-<STATUS3>-<YYYYMMDDHHmm UTC>-<DIGEST6>
//
// It is deterministic within a minute. status 0 means no backend status.
func SupportCode(p domain.Provider, stage Stage, status int, reason string, at time.Time) string {
	if status < 0 || status > 999 {
		status = 0
	}
	st := fmt.Sprintf("%03d", status)
	ts := at.UTC().Format(supportTimestampLayout)
	return strings.Join([]string{p.Code3(), string(stage), st, ts, digest(string(stage) + "|" + st + "|" + reason + "|" + ts)}, "-")
}

// digest is a 31-multiplier rolling hash, base-36, upper-cased, six characters.
func digest(s string) string {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	d := strings.ToUpper(strconv.FormatUint(uint64(h), 36))
	if len(d) < 6 {
		d = strings.Repeat("0", 6-len(d)) + d
	}
	return d[len(d)-6:]
}
