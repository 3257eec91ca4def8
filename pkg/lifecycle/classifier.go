// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"errors"
	"fmt"
)

// Fault is what the classifier can inspect on a remote error. Transport error
// types implement it; errors that don't are only ever GeneralServiceException.
type Fault interface {
	error
	// FaultCode is the remote API's own name for the fault ("ALREADY_EXISTS",
	// "NoSuchBucket", ...). Empty when the API gives none.
	FaultCode() string
	// StatusCode is the HTTP-equivalent status, or 0 when unknown.
	StatusCode() int
	// Throttled reports the API's generic rate-limit flag.
	Throttled() bool
}

// Rule maps faults matching Match to Kind.
type Rule struct {
	Name  string
	Match func(err error) bool
	Kind  Kind
	// Ops restricts the rule to faults of these operations. Empty applies
	// it to every call, reads included.
	Ops []Operation
}

func (r Rule) appliesTo(op Operation) bool {
	if len(r.Ops) == 0 {
		return true
	}
	for _, o := range r.Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Classifier maps remote faults to a Kind by evaluating its rules top to
// bottom. It never retries.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier from the API's named faults followed by
// the generic throttling, 5xx and 4xx rules. Named faults are evaluated in
// the order given.
func NewClassifier(named ...NamedFault) *Classifier {
	rules := make([]Rule, 0, len(named)+3)
	for _, n := range named {
		rules = append(rules, Rule{
			Name:  "fault:" + n.Code,
			Match: FaultCodeIs(n.Code),
			Kind:  n.Kind,
		})
	}
	rules = append(rules,
		Rule{Name: "throttled", Match: isThrottled, Kind: KindThrottling},
		Rule{Name: "5xx", Match: StatusInRange(500, 599), Kind: KindServiceInternalError},
		Rule{Name: "4xx", Match: StatusInRange(400, 499), Kind: KindInvalidRequest},
	)
	return &Classifier{rules: rules}
}

// NamedFault binds a remote fault code to a kind.
type NamedFault struct {
	Code string
	Kind Kind
}

// BusyOnConflict treats a 409 raised by one of ops as the resource being
// busy with another change rather than as a duplicate.
func BusyOnConflict(ops ...Operation) Rule {
	return Rule{
		Name:  "busy:409",
		Match: StatusInRange(409, 409),
		Kind:  KindThrottling,
		Ops:   ops,
	}
}

// With returns a copy of the classifier with extra rules evaluated before the
// existing ones.
func (c *Classifier) With(rules ...Rule) *Classifier {
	merged := make([]Rule, 0, len(rules)+len(c.rules))
	merged = append(merged, rules...)
	merged = append(merged, c.rules...)
	return &Classifier{rules: merged}
}

// Classify returns the kind of the first matching rule that is not
// restricted to an operation, or GeneralServiceException.
func (c *Classifier) Classify(err error) Kind {
	return c.ClassifyFor("", err)
}

// ClassifyFor returns the kind of the first rule matching err raised by op.
func (c *Classifier) ClassifyFor(op Operation, err error) Kind {
	if err == nil {
		return KindNone
	}
	// Already classified upstream (e.g. by a translator).
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	for _, r := range c.rules {
		if r.appliesTo(op) && r.Match(err) {
			return r.Kind
		}
	}
	return KindGeneralServiceException
}

// Wrap classifies err raised by op and wraps it with a message naming the
// attempted request and, when known, the in-flight resource. op is empty for
// reads and lists.
func (c *Classifier) Wrap(op Operation, err error, request string, model *Model) *Error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	kind := c.ClassifyFor(op, err)
	msg := fmt.Sprintf("%s failed: %s", request, faultMessage(err))
	if model != nil && model.NativeID != "" {
		msg = fmt.Sprintf("%s failed for %s: %s", request, model.NativeID, faultMessage(err))
	}
	return NewError(kind, msg, err)
}

// FaultCodeIs matches faults whose FaultCode equals one of codes.
func FaultCodeIs(codes ...string) func(error) bool {
	return func(err error) bool {
		var f Fault
		if !errors.As(err, &f) {
			return false
		}
		for _, code := range codes {
			if f.FaultCode() == code {
				return true
			}
		}
		return false
	}
}

// StatusInRange matches faults whose status code is within [lo, hi].
func StatusInRange(lo, hi int) func(error) bool {
	return func(err error) bool {
		var f Fault
		if !errors.As(err, &f) {
			return false
		}
		code := f.StatusCode()
		return code >= lo && code <= hi
	}
}

func isThrottled(err error) bool {
	var f Fault
	return errors.As(err, &f) && f.Throttled()
}

func faultMessage(err error) string {
	var f Fault
	if errors.As(err, &f) {
		return f.Error()
	}
	return err.Error()
}
