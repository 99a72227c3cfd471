package printer

import (
	"fmt"

	"github.com/rlch/compatinfo/logging"
)

const indent = "    "

// Formatter turns records carrying an operation into console messages.
// Records without an operation, or with an unknown one, pass through
// unchanged.
type Formatter struct {
	palette *Palette
	debug   bool
}

// NewFormatter creates a formatter. In debug mode, test start messages use
// the fully qualified test label.
func NewFormatter(palette *Palette, debug bool) *Formatter {
	return &Formatter{palette: palette, debug: debug}
}

// formatFunc builds the message for one operation.
type formatFunc func(f *Formatter, r logging.Record) string

var formatters = map[Operation]formatFunc{
	OpStartTestSuite:    (*Formatter).startTestSuite,
	OpEndTestSuite:      (*Formatter).endTestSuite,
	OpStartTest:         (*Formatter).startTest,
	OpEndTest:           (*Formatter).endTest,
	OpAddError:          testLine("Error while running test%s."),
	OpAddFailure:        testLine("Test%s failed."),
	OpAddIncompleteTest: testLine("Test%s is incomplete."),
	OpAddRiskyTest:      testLine("Test%s is risky."),
	OpAddSkippedTest:    testLine("Test%s has been skipped."),
	OpPrintHeader:       (*Formatter).printHeader,
	OpPrintFooter:       (*Formatter).printFooter,
}

// Format rewrites r's message. It is a logging.Processor.
func (f *Formatter) Format(r logging.Record) logging.Record {
	op, ok := OperationOf(r)
	if !ok {
		return r
	}

	format, ok := formatters[op]
	if !ok {
		return r
	}

	r.Message = format(f, r)

	return r
}

// Message builds the message for op from ctx alone.
func (f *Formatter) Message(op Operation, ctx logging.Context) string {
	r := logging.Record{Context: ctx}.With(KeyOperation, string(op))
	return f.Format(r).Message
}

func suitePrefix(f *Formatter, r logging.Record) string {
	name := r.Str(KeySuiteName)
	if name == "" {
		return ""
	}

	return f.palette.Label.Sprint(name+":") + "\n\n"
}

func (f *Formatter) startTestSuite(r logging.Record) string {
	msg := fmt.Sprintf("Test suite started with %d tests", r.Int(KeyTestCount))

	return suitePrefix(f, r) + f.palette.Info.Sprint(msg) + "\n"
}

func (f *Formatter) endTestSuite(r logging.Record) string {
	c := countersFrom(r)

	return suitePrefix(f, r) +
		f.palette.Info.Sprint("Test suite ended. ") +
		f.palette.Suite[c.Outcome()].Sprint(c.ResultLine()) +
		"\n"
}

func (f *Formatter) startTest(r logging.Record) string {
	label := r.Str(KeyTestName)
	if f.debug {
		if long := r.Str(KeyTestDescription); long != "" {
			label = long
		}
	}

	return indent + f.palette.Info.Sprint(fmt.Sprintf("Test%s started.", quoted(label)))
}

func (f *Formatter) endTest(r logging.Record) string {
	return indent + f.palette.Info.Sprint(fmt.Sprintf("Test%s ended.", quoted(r.Str(KeyTestName))))
}

// testLine formats per-test records from a phrase with one %s verb for the
// quoted test name. A reason, when present, follows the phrase.
func testLine(phrase string) formatFunc {
	return func(f *Formatter, r logging.Record) string {
		msg := fmt.Sprintf(phrase, quoted(r.Str(KeyTestName)))
		if reason := r.Str(KeyReason); reason != "" {
			msg += " " + reason
		}

		return indent + f.palette.Info.Sprint(msg)
	}
}

func quoted(name string) string {
	if name == "" {
		return ""
	}

	return " '" + name + "'"
}

func (f *Formatter) printHeader(r logging.Record) string {
	return f.palette.Label.Sprint(r.Message)
}

func (f *Formatter) printFooter(r logging.Record) string {
	c := countersFrom(r)
	return f.palette.Footer[c.Outcome()].Sprint(r.Message)
}
