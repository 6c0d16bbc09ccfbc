// Package relerrors is the closed error taxonomy and aggregation
// primitive described by the core's error-handling design: a short,
// stable set of user-facing codes, and a collector that gathers the
// independent failures of one validation phase into a single error
// value before surfacing it.
//
// The collector is backed by hashicorp/go-multierror so the aggregate
// itself still satisfies the error interface and can be returned,
// wrapped, and inspected like any other error.
package relerrors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Code is one of the fourteen stable, user-facing error codes.
type Code string

const (
	ENoGitRepo           Code = "ENOGITREPO"
	ENoRepoURL           Code = "ENOREPOURL"
	EGitNoPermission     Code = "EGITNOPERMISSION"
	EInvalidTagFormat    Code = "EINVALIDTAGFORMAT"
	ETagNoVersion        Code = "ETAGNOVERSION"
	EInvalidBranch       Code = "EINVALIDBRANCH"
	EDuplicateBranches   Code = "EDUPLICATEBRANCHES"
	EInvalidBranchName   Code = "EINVALIDBRANCHNAME"
	EMaintenanceBranch   Code = "EMAINTENANCEBRANCH"
	EMaintenanceBranches Code = "EMAINTENANCEBRANCHES"
	EReleaseBranches     Code = "ERELEASEBRANCHES"
	EPrereleaseBranch    Code = "EPRERELEASEBRANCH"
	EInvalidNextVersion  Code = "EINVALIDNEXTVERSION"
	EInvalidLTSMerge     Code = "EINVALIDLTSMERGE"
)

// Error is a single taxonomy member: a stable code, a short human message,
// and an optional markdown details block surfaced to the user.
type Error struct {
	Code    Code
	Message string
	Details string

	// SemanticRelease marks this error as user-facing release-decision
	// policy (as opposed to an internal/unexpected failure). The driver
	// routes SemanticRelease errors to the fail plugins and logs the
	// rest as internal.
	SemanticRelease bool
}

func (e *Error) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s\n%s", e.Code, e.Message, e.Details)
}

// New constructs a taxonomy error. Errors built this way are always
// SemanticRelease: they are exactly the fourteen codes a user is meant to
// see and act on.
func New(code Code, message string, details ...string) *Error {
	d := ""
	if len(details) > 0 {
		d = details[0]
	}
	return &Error{Code: code, Message: message, Details: d, SemanticRelease: true}
}

// Is lets errors.Is(err, relerrors.New(code, ...)) match any *Error that
// carries the same Code, whatever its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Collector gathers every independent failure of one validation phase
// (branch validation and classification, verify plugins, ...) and yields a single
// aggregate error.
type Collector struct {
	errs *multierror.Error
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records a failure. Nil errors are ignored so call sites can collect
// unconditionally: c.Add(validateX(...)).
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.errs = multierror.Append(c.errs, err)
}

// Addf is a convenience for Add(relerrors.New(...)).
func (c *Collector) Addf(code Code, format string, args ...any) {
	c.Add(New(code, fmt.Sprintf(format, args...)))
}

// HasErrors reports whether any error was collected.
func (c *Collector) HasErrors() bool {
	return c.errs != nil && c.errs.Len() > 0
}

// ErrorCount returns the number of collected errors.
func (c *Collector) ErrorCount() int {
	if c.errs == nil {
		return 0
	}
	return c.errs.Len()
}

// ErrorOrNil returns the aggregate error, or nil if nothing was collected.
// The returned value satisfies error and unwraps (via errors.As/errors.Is)
// to each individual *Error.
func (c *Collector) ErrorOrNil() error {
	if c.errs == nil {
		return nil
	}
	return c.errs.ErrorOrNil()
}

// Split partitions err into the SemanticRelease-marked members of its
// aggregate (if any) and the plain internal errors: an aggregate may mix
// user-facing and internal failures, and the driver routes them
// differently when it surfaces the result.
func Split(err error) (semantic []*Error, internal []error) {
	if err == nil {
		return nil, nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			splitOne(e, &semantic, &internal)
		}
		return semantic, internal
	}
	splitOne(err, &semantic, &internal)
	return semantic, internal
}

func splitOne(err error, semantic *[]*Error, internal *[]error) {
	if re, ok := err.(*Error); ok && re.SemanticRelease {
		*semantic = append(*semantic, re)
		return
	}
	*internal = append(*internal, err)
}
