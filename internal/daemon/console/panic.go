package console

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/watchfire-io/labwatch/internal/models"
)

// SignatureKind tags how a Signature matches.
type SignatureKind int

const (
	SubstringSignature SignatureKind = iota
	PatternSignature
)

// Signature is one known panic marker. Name is the text reported to
// the catalog when it matches.
type Signature struct {
	Name string
	Kind SignatureKind
	text string
	re   *regexp.Regexp
}

// Substring returns a signature matching text anywhere in a line.
func Substring(text string) Signature {
	return Signature{Name: text, Kind: SubstringSignature, text: text}
}

// Pattern compiles an RE2 expression into a named signature.
func Pattern(name, expr string) (Signature, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid panic pattern %q: %w", name, err)
	}
	return Signature{Name: name, Kind: PatternSignature, re: re}, nil
}

// MustPattern is like Pattern but panics on a bad expression.
func MustPattern(name, expr string) Signature {
	sig, err := Pattern(name, expr)
	if err != nil {
		panic(err)
	}
	return sig
}

// Matches reports whether line contains the signature.
func (s Signature) Matches(line string) bool {
	switch s.Kind {
	case SubstringSignature:
		return strings.Contains(line, s.text)
	case PatternSignature:
		return s.re.MatchString(line)
	}
	return false
}

// DefaultSignatures returns the built-in panic markers in match order.
func DefaultSignatures() []Signature {
	return []Signature{
		Substring("Kernel panic"),
		MustPattern("Oops", `Oops(?:[\s:\[]|$)`),
		MustPattern("general protection fault", `general protection fault[:,]`),
		Substring("general protection handler: wrong gs"),
		Substring("(XEN) Panic"),
		MustPattern("kernel BUG at", `kernel BUG at .+`),
		Substring("INFO: possible recursive locking detected"),
		Substring("INFO: inconsistent lock state"),
		Substring("INFO: rcu_sched self-detected stall"),
		Substring("INFO: rcu_sched detected stalls"),
		Substring("INFO: suspicious RCU usage"),
		Substring("BUG: unable to handle kernel"),
		Substring("BUG: soft lockup"),
	}
}

// SignaturesFromSettings compiles configured signatures. An empty list
// selects DefaultSignatures.
func SignaturesFromSettings(configured []models.PanicSignature) ([]Signature, error) {
	if len(configured) == 0 {
		return DefaultSignatures(), nil
	}
	sigs := make([]Signature, 0, len(configured))
	for _, c := range configured {
		if c.Pattern != "" {
			sig, err := Pattern(c.Name, c.Pattern)
			if err != nil {
				return nil, err
			}
			sigs = append(sigs, sig)
			continue
		}
		sig := Substring(c.Substring)
		sig.Name = c.Name
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// PanicRecord is the first panic seen in a run. It is never updated.
type PanicRecord struct {
	Signature  string
	Line       string
	DetectedAt time.Time
}

// PanicDetector scans complete lines for panic signatures.
type PanicDetector struct {
	signatures []Signature
}

// NewPanicDetector creates a detector. With no signatures it uses
// DefaultSignatures.
func NewPanicDetector(signatures ...Signature) *PanicDetector {
	if len(signatures) == 0 {
		signatures = DefaultSignatures()
	}
	return &PanicDetector{signatures: signatures}
}

// Detect returns the first signature, in list order, found in line.
func (d *PanicDetector) Detect(line string) (Signature, bool) {
	for _, sig := range d.signatures {
		if sig.Matches(line) {
			return sig, true
		}
	}
	return Signature{}, false
}
