// Package wizard collects the operator inputs needed for a provisioning run.
//
// A [Collector] resolves each [Field] from preset values (flags, environment),
// then from a [Prompter], then from its default. Defaults for the database
// name, user and administrator email derive from the normalized domain. The
// database password has no default, so an empty answer fails with
// [ErrPasswordRequired].
//
// Two prompters exist: [HuhPrompter] renders charmbracelet/huh forms on a
// terminal, and [LinePrompter] reads answers line by line from any reader.
package wizard
