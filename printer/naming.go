package printer

import (
	"strings"

	"github.com/rlch/compatinfo/logging"
)

// SuiteNaming shortens the names of reference suites.
//
// A reference suite is named after its test case, "<ns>\FooExtensionTest",
// and its per-method suites "<ns>\FooExtensionTest::bar". Method suites are
// shown as "Foo > bar".
type SuiteNaming struct {
	// Prefix is the namespace stripped from method suites.
	Prefix string

	// Marker ends the name of a reference test case.
	Marker string
}

// DefaultSuiteNaming matches the reference extension test cases.
func DefaultSuiteNaming() SuiteNaming {
	return SuiteNaming{
		Prefix: `Reference\Extension\`,
		Marker: "ExtensionTest",
	}
}

// Normalize rewrites a method suite name. Other names are returned unchanged.
func (n SuiteNaming) Normalize(name string) string {
	if n.Marker == "" {
		return name
	}

	sep := n.Marker + "::"

	i := strings.Index(name, sep)
	if i <= 0 {
		return name
	}

	if n.Prefix != "" {
		if j := strings.LastIndex(name[:i], n.Prefix); j >= 0 {
			name = name[j+len(n.Prefix):]
		}
	}

	return strings.ReplaceAll(name, sep, " > ")
}

// IsReference reports whether name is a reference test case suite, as
// opposed to one of its method suites or an unrelated suite.
func (n SuiteNaming) IsReference(name string) bool {
	if n.Marker == "" || strings.Contains(name, "::") {
		return false
	}

	last := name
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		last = name[i+1:]
	}

	return strings.HasSuffix(last, n.Marker)
}

// CountReferences counts the reference suites among names.
func (n SuiteNaming) CountReferences(names []string) int {
	count := 0

	for _, name := range names {
		if n.IsReference(name) {
			count++
		}
	}

	return count
}

// Processor rewrites the suite name of suite start and end records.
func (n SuiteNaming) Processor() logging.Processor {
	return func(r logging.Record) logging.Record {
		op, ok := OperationOf(r)
		if !ok || (op != OpStartTestSuite && op != OpEndTestSuite) {
			return r
		}

		name := r.Str(KeySuiteName)
		if normalized := n.Normalize(name); normalized != name {
			return r.With(KeySuiteName, normalized)
		}

		return r
	}
}
