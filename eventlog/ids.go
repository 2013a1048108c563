package eventlog

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomBase36 returns n cryptographically random base36 characters.
func randomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure is unrecoverable on this platform; the
			// corpus's own security/jwt.go treats key-material generation
			// failures the same way, by surfacing a panic rather than
			// silently degrading to a weaker source.
			panic(fmt.Sprintf("eventlog: crypto/rand unavailable: %v", err))
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String()
}

func randomHex(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("eventlog: crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}

// NewCorrelationID returns "{prefix}-{base36 ms}-{8 base36 random}".
func NewCorrelationID(prefix string) string {
	ms := time.Now().UnixMilli()
	return fmt.Sprintf("%s-%s-%s", prefix, strconv.FormatInt(ms, 36), randomBase36(8))
}

// NewTraceID returns 32 lowercase hex characters (W3C-trace-id shaped).
func NewTraceID() string {
	return randomHex(16)
}

// NewSpanID returns 16 lowercase hex characters.
func NewSpanID() string {
	return randomHex(8)
}

// NewBatchID returns "batch-{YYYYMMDD}-{source}-{6 base36 random}".
func NewBatchID(source string) string {
	day := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("batch-%s-%s-%s", day, source, randomBase36(6))
}

// MaskLast4 masks a sensitive string, revealing only the trailing 4
// characters (e.g. card numbers in identifiers/summaries).
func MaskLast4(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "***" + s[len(s)-4:]
}

// SummaryInput carries the fields used to render a human-readable summary.
type SummaryInput struct {
	Action  string
	Target  string
	Outcome string
	Details string
}

// GenerateSummary renders "{action}[ target] - outcome[ (details)]".
func GenerateSummary(in SummaryInput) string {
	var b strings.Builder
	b.WriteString(in.Action)
	if in.Target != "" {
		b.WriteByte(' ')
		b.WriteString(in.Target)
	}
	b.WriteString(" - ")
	b.WriteString(in.Outcome)
	if in.Details != "" {
		b.WriteString(" (")
		b.WriteString(in.Details)
		b.WriteByte(')')
	}
	return b.String()
}
